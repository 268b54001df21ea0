package engine

import (
	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// pushKoppa appends val to the kappa history. At capacity the oldest
// slot drops and the rest shift down, so index 0 is always the oldest
// retained value.
func pushKoppa(st *State, val *rational.Rational) {
	if st.KoppaStackSize == len(st.KoppaStack) {
		for i := 1; i < len(st.KoppaStack); i++ {
			st.KoppaStack[i-1].Set(&st.KoppaStack[i])
		}
		st.KoppaStack[len(st.KoppaStack)-1].Set(val)
		return
	}
	st.KoppaStack[st.KoppaStackSize].Set(val)
	st.KoppaStackSize++
}

// updateSample refreshes the externally visible kappa sample. The live
// register is the default; with multi-level history on, microtick 11
// samples the oldest retained slot and microtick 5 samples slot 2 when
// the stack is deep enough. KoppaSampleIndex records the slot, -1 for
// the live register.
func updateSample(st *State, microtick int, multiLevel bool) {
	st.KoppaSample.Set(&st.Koppa)
	st.KoppaSampleIndex = -1
	if !multiLevel {
		return
	}
	if microtick == 11 && st.KoppaStackSize > 0 {
		st.KoppaSample.Set(&st.KoppaStack[0])
		st.KoppaSampleIndex = 0
	} else if microtick == 5 && st.KoppaStackSize > 2 {
		st.KoppaSample.Set(&st.KoppaStack[2])
		st.KoppaSampleIndex = 2
	}
}

// AccrualStep updates kappa per the configured trigger and operation.
// It cannot fail: without a trigger it only maintains the recency flag
// and the sample. The after-psi trigger is edge-triggered; its fire
// disarms the recency flag until the next transform fire rearms it.
func AccrualStep(cfg *config.Config, st *State, psiFired, isMemoryStep bool, microtick int) {
	trigger := false
	switch cfg.KoppaTrigger {
	case config.TriggerOnPsi:
		trigger = psiFired
	case config.TriggerAfterPsi:
		trigger = isMemoryStep && !psiFired && st.PsiRecent
	case config.TriggerEveryMemory:
		trigger = isMemoryStep
	case config.TriggerEveryMicrotick:
		trigger = true
	}

	if !trigger {
		if !psiFired && cfg.KoppaTrigger != config.TriggerEveryMemory {
			st.PsiRecent = st.PsiRecent && cfg.KoppaTrigger == config.TriggerAfterPsi
		}
		updateSample(st, microtick, cfg.MultiLevelKoppa)
		return
	}

	// The history keeps pre-update values; the push happens before the
	// operation rewrites kappa.
	if cfg.MultiLevelKoppa {
		pushKoppa(st, &st.Koppa)
	}

	switch cfg.Koppa {
	case config.KoppaDump:
		st.Koppa.SetInt64(0, 0)
	case config.KoppaPop:
		st.Koppa.Set(&st.Epsilon)
	case config.KoppaAccumulate:
		st.Koppa.Add(&st.Koppa, &st.Epsilon)
	}

	var sum rational.Rational
	sum.Add(&st.Upsilon, &st.Beta)
	st.Koppa.Add(&st.Koppa, &sum)

	if cfg.KoppaTrigger == config.TriggerAfterPsi {
		st.PsiRecent = false
	} else {
		st.PsiRecent = psiFired
	}
	updateSample(st, microtick, cfg.MultiLevelKoppa)
}
