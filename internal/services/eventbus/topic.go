package eventbus

import "strings"

const (
	userTopicPrefix    = "user:"
	projectTopicPrefix = "project:"
)

func UserTopic(userID string) string {
	return userTopicPrefix + userID
}

func ProjectTopic(projectID string) string {
	return projectTopicPrefix + projectID
}

// ParseUserTopic returns the user id of a user:{id} topic.
func ParseUserTopic(topic string) (string, bool) {
	userID, ok := strings.CutPrefix(topic, userTopicPrefix)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
