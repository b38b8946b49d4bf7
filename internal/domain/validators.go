package domain

import (
	"fmt"
	"regexp"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	snowflakeRegex = regexp.MustCompile(`^[0-9]{15,21}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateSnowflake checks that id looks like a Discord snowflake.
func ValidateSnowflake(id string) error {
	if id == "" {
		return fmt.Errorf("discord id is required")
	}
	if !snowflakeRegex.MatchString(id) {
		return fmt.Errorf("invalid discord id: %q", id)
	}
	return nil
}
