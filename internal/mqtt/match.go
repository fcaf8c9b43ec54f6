package mqtt

import "strings"

// TopicMatches reports whether a concrete topic matches a subscription
// filter, applying MQTT wildcard semantics:
//
//   - "+" matches exactly one level
//   - "#" matches any number of trailing levels (including zero)
//
// The broker expands wildcards before delivery, so inbound messages
// carry concrete topics; the router uses this to find the filter a
// message arrived under.
func TopicMatches(filter, topic string) bool {
	if filter == topic {
		return true
	}

	filterLevels := strings.Split(filter, "/")
	topicLevels := strings.Split(topic, "/")

	for i, level := range filterLevels {
		switch level {
		case "#":
			// "#" must be the last level; it matches the remainder,
			// including an empty one ("a/#" matches "a").
			return i == len(filterLevels)-1
		case "+":
			if i >= len(topicLevels) {
				return false
			}
		default:
			if i >= len(topicLevels) || topicLevels[i] != level {
				return false
			}
		}
	}

	return len(filterLevels) == len(topicLevels)
}
