package constants

// Redis Key Layout
// Pattern: mergington:{module}:{kind}:{identifier?}

// ================== REDIS KEY PREFIXES ==================

const (
	KEY_PREFIX = "mergington"
)

// ================== ACTIVITIES MODULE ==================

const (
	// Activity names in seed order (list)
	REDIS_KEY_ACTIVITY_NAMES = KEY_PREFIX + ":activities:names"

	// Per activity, suffixed with the activity name
	REDIS_KEY_ACTIVITY_DETAIL  = KEY_PREFIX + ":activities:detail:"  // hash: description, schedule, max_participants
	REDIS_KEY_ACTIVITY_ROSTER  = KEY_PREFIX + ":activities:roster:"  // list: emails in signup order
	REDIS_KEY_ACTIVITY_MEMBERS = KEY_PREFIX + ":activities:members:" // set: emails, for membership checks
)

// ================== KEY BUILDERS ==================

func BuildActivityDetailKey(name string) string {
	return REDIS_KEY_ACTIVITY_DETAIL + name
}

func BuildActivityRosterKey(name string) string {
	return REDIS_KEY_ACTIVITY_ROSTER + name
}

func BuildActivityMembersKey(name string) string {
	return REDIS_KEY_ACTIVITY_MEMBERS + name
}

// BuildActivityKeys returns detail, roster and members keys, in the order the Lua scripts expect
func BuildActivityKeys(name string) []string {
	return []string{
		BuildActivityDetailKey(name),
		BuildActivityRosterKey(name),
		BuildActivityMembersKey(name),
	}
}
