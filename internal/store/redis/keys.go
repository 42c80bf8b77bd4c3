package redis

import "strconv"

const (
	// KeyPrefixBookmark is the prefix for cached bookmark rows
	KeyPrefixBookmark = "bookmarks:bookmark:"
)

// BookmarkKey returns the Redis key for a cached bookmark by id
func BookmarkKey(id int64) string {
	return KeyPrefixBookmark + strconv.FormatInt(id, 10)
}
