package integration

import (
	"fmt"
	"time"
)

// TestTrainerEmail generates a unique trainer email using a timestamp
func TestTrainerEmail(suffix string) string {
	return fmt.Sprintf("trainer-%d-%s@example.com", time.Now().UnixNano(), suffix)
}

// Passwords used across the integration suite. Both satisfy the
// portal password policy (8+ chars, uppercase, digit, special).
const (
	TestPassword     = "TrainerPass123!"
	TestTempPassword = "TempPass456#"
	TestNewPassword  = "BrandNewPass789$"
)
