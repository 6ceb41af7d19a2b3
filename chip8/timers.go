package chip8

// Tick decrements the delay and sound timers once. It is called once
// per 60 Hz frame, after the instruction batch.
func (vm *VM) Tick() {
	if vm.dt > 0 {
		vm.dt--
	}
	if vm.st > 0 {
		vm.st--
	}
}

// SoundActive reports whether a tone should currently be audible.
func (vm *VM) SoundActive() bool {
	return vm.st > 0
}

// DelayTimer returns the current delay timer value.
func (vm *VM) DelayTimer() byte {
	return vm.dt
}
