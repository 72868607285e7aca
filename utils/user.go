package utils

import "unicode/utf16"

var avatarColors = []string{"#9b87f5", "#8B5CF6", "#0EA5E9", "#F97316", "#10B981"}

// DefaultAvatarColor is used when there is no user to derive a colour from.
const DefaultAvatarColor = "#9b87f5"

// AvatarColor picks a stable colour for a user from their email or id.
// The hash is h = c + (h<<5) - h over UTF-16 code units, as a browser
// computes it: only the shift works in 32 bits, the running sum does not.
func AvatarColor(key string) string {
	if key == "" {
		return DefaultAvatarColor
	}

	var hash int64
	for _, unit := range utf16.Encode([]rune(key)) {
		hash = int64(unit) + int64(int32(hash)<<5) - hash
	}

	if hash < 0 {
		hash = -hash
	}
	return avatarColors[hash%int64(len(avatarColors))]
}
