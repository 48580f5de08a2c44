package components

// String returns the display name for a CosmeticMode.
func (m CosmeticMode) String() string {
	names := CosmeticModeNames()
	if int(m) < len(names) {
		return names[m]
	}
	return "Unknown"
}

// CosmeticModeNames returns the display names for all cosmetic modes.
// The order matches the CosmeticMode constants.
func CosmeticModeNames() []string {
	return []string{"Wild", "Tamed", "Player"}
}
