package redis

import "fmt"

const (
	// KeyPrefixContent is the prefix for per-user content documents
	KeyPrefixContent = "icebreaker:content:"
	// KeyPrefixCard is the prefix for per-user card profiles
	KeyPrefixCard = "icebreaker:card:"
	// KeyAllUsers is the key for the set of user IDs owning a document
	KeyAllUsers = "icebreaker:users:all"
)

// ContentKey returns the Redis key for a user's content document
func ContentKey(userID string) string {
	return KeyPrefixContent + userID
}

// CardKey returns the Redis key for a user's card profile
func CardKey(userID string) string {
	return KeyPrefixCard + userID
}

// AllUsersKey returns the key for the set of all user IDs
func AllUsersKey() string {
	return KeyAllUsers
}

// ExtractUserID extracts the user ID from a content key
func ExtractUserID(key string) (string, error) {
	if len(key) <= len(KeyPrefixContent) || key[:len(KeyPrefixContent)] != KeyPrefixContent {
		return "", fmt.Errorf("invalid content key: %s", key)
	}
	return key[len(KeyPrefixContent):], nil
}
