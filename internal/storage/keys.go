package storage

// Collection prefixes and fixed keys of the studio key space.
const (
	PrefixAnalysisHistory = "contentAnalysisHistory"
	PrefixChatHistory     = "chatbotHistory"

	KeyBlogPosts     = "userGeneratedBlogPosts"
	KeyProfile       = "userProfile"
	KeyAuthFlag      = "isAuthenticated"
	KeyTourCompleted = "tourCompleted"
)

// GuestNamespace partitions per-user collections when nobody is logged in.
const GuestNamespace = "guest"

// BuildKey derives the physical storage key for a collection. Per-user
// collections pass the identity namespace; collections without per-user
// partitioning pass an empty namespace and get the bare prefix back.
// Pure function: equal inputs always produce equal output.
func BuildKey(prefix, namespace string) string {
	if namespace == "" {
		return prefix
	}
	return prefix + "_" + namespace
}

// IsIdentityKey reports whether a mutation of key can change the result
// of identity resolution and therefore the active namespace of every
// per-user collection.
func IsIdentityKey(key string) bool {
	return key == KeyProfile || key == KeyAuthFlag
}
