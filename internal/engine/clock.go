package engine

// MicroticksPerTick is the length of one propagation tick. The phase
// schedule below covers exactly this many microticks and analysis code
// linearizes time over it, so the three constants move together.
const MicroticksPerTick = 11

// Phase identifies which of the three interleaved phase tracks a
// microtick belongs to.
type Phase byte

const (
	// PhaseEngine microticks snapshot epsilon and propagate the value
	// registers.
	PhaseEngine Phase = 'E'
	// PhaseMemory microticks evaluate patterns on beta, run the psi
	// transform, and accrue kappa.
	PhaseMemory Phase = 'M'
	// PhaseReset microticks accrue kappa and clear phase-scoped flags.
	PhaseReset Phase = 'R'
)

func (p Phase) String() string {
	return string(p)
}

// PhaseFor returns the phase of a microtick in [1, MicroticksPerTick]:
// E on 1, 4, 7, 10; M on 2, 5, 8, 11; R on 3, 6, 9.
func PhaseFor(microtick int) Phase {
	switch microtick {
	case 1, 4, 7, 10:
		return PhaseEngine
	case 2, 5, 8, 11:
		return PhaseMemory
	}
	return PhaseReset
}

// LinearIndex maps a (tick, microtick) pair onto the run's absolute
// microtick axis. Tick 1, microtick 1 is index 1; indexes advance by
// one per microtick with no gaps, which is what event spacing
// statistics measure over.
func LinearIndex(tick uint64, microtick int) uint64 {
	return (tick-1)*MicroticksPerTick + uint64(microtick)
}
