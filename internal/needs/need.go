// Package needs implements the per-agent needs model: four depletable
// scalars per villager, decayed and refilled over simulation time, with
// critical alerting and a happiness contribution.
package needs

import "github.com/selwood/villagefolk/internal/npc"

// NeedType enumerates the four need axes.
type NeedType uint8

const (
	NeedFood    NeedType = iota
	NeedRest
	NeedSocial
	NeedShelter

	// NumNeedTypes is the number of need axes per agent.
	NumNeedTypes = 4
)

// String returns the canonical name of a need type.
func (t NeedType) String() string {
	switch t {
	case NeedFood:
		return "FOOD"
	case NeedRest:
		return "REST"
	case NeedSocial:
		return "SOCIAL"
	case NeedShelter:
		return "SHELTER"
	default:
		return "UNKNOWN"
	}
}

// Thresholds shared by the need model. CriticalFloor drives instantaneous
// alerting (tracker alert set, HasCriticalNeeds). The decision engine
// applies its own, stricter emergency floor — the two are independent
// concerns: alerting fires earlier than interruption.
const (
	CriticalFloor      = 20.0
	SatisfiedThreshold = 60.0
)

// Need is one depletable/refillable scalar, always clamped to [0, 100].
type Need struct {
	Type  NeedType `json:"type"`
	Value float64  `json:"value"`
}

// Apply adds delta (positive or negative) and clamps.
func (n *Need) Apply(delta float64) {
	n.Value += delta
	if n.Value < 0 {
		n.Value = 0
	}
	if n.Value > 100 {
		n.Value = 100
	}
}

// IsCritical reports whether the need is below its critical floor.
func (n *Need) IsCritical() bool {
	return n.Value < CriticalFloor
}

// IsSatisfied reports whether the need is comfortably met.
func (n *Need) IsSatisfied() bool {
	return n.Value > SatisfiedThreshold
}

// HappinessDelta returns this need's contribution to happiness per
// simulation hour. Deprivation hurts much more than abundance helps.
func (n *Need) HappinessDelta() float64 {
	switch {
	case n.Value < CriticalFloor:
		return -4
	case n.Value < 40:
		return -1.5
	case n.Value > 80:
		return 1
	default:
		return 0
	}
}

// Per-second decay/recovery rates, applied by the tracker scaled to the
// caller's deltaTime. SHELTER only moves while the agent is outside its
// territory (decay) or inside (recovery).
const (
	foodDecayPerSec       = 0.30
	foodWorkingFactor     = 1.5
	restDecayPerSec       = 0.20
	restWorkingFactor     = 2.0
	restRecoveryPerSec    = 2.0
	socialDecayPerSec     = 0.15
	socialRecoveryPerSec  = 1.5
	shelterDecayPerSec    = 0.25
	shelterRecoveryPerSec = 1.0
)

// ratePerSecond returns the signed per-second rate for a need given the
// agent's current state flags.
func ratePerSecond(t NeedType, f npc.StateFlags) float64 {
	switch t {
	case NeedFood:
		rate := -foodDecayPerSec
		if f.IsWorking {
			rate *= foodWorkingFactor
		}
		return rate
	case NeedRest:
		if f.IsResting {
			return restRecoveryPerSec
		}
		rate := -restDecayPerSec
		if f.IsWorking {
			rate *= restWorkingFactor
		}
		return rate
	case NeedSocial:
		if f.IsSocializing {
			return socialRecoveryPerSec
		}
		return -socialDecayPerSec
	case NeedShelter:
		if f.IsInsideTerritory {
			return shelterRecoveryPerSec
		}
		return -shelterDecayPerSec
	default:
		return 0
	}
}

// Default registration values. Social starts at half — fresh villagers
// arrive fed and rested but not yet connected.
var defaultValues = [NumNeedTypes]float64{
	NeedFood:    100,
	NeedRest:    100,
	NeedSocial:  50,
	NeedShelter: 100,
}
