package models

// Settings is a separate persisted record with its own storage slot.
type Settings struct {
	// AICount is how many variants to request per generation, 1..8.
	AICount int `json:"aiCount"`
	// AIStoreVariants persists generated variants into the dedicated
	// variant deck instead of keeping them session-only.
	AIStoreVariants bool `json:"aiStoreVariants"`
	// AILanguage is the explanation language, "ko" or "en".
	AILanguage string `json:"aiLanguage"`
}

// DefaultSettings returns the defaults applied for any missing or
// corrupt settings field.
func DefaultSettings() Settings {
	return Settings{
		AICount:         3,
		AIStoreVariants: false,
		AILanguage:      "ko",
	}
}

// Normalize clamps and defaults every field in place.
func (s *Settings) Normalize() {
	if s.AICount < MinVariants || s.AICount > MaxVariants {
		if s.AICount == 0 {
			s.AICount = DefaultSettings().AICount
		} else if s.AICount < MinVariants {
			s.AICount = MinVariants
		} else {
			s.AICount = MaxVariants
		}
	}
	if s.AILanguage != "en" {
		s.AILanguage = "ko"
	}
}
