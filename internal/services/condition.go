package services

import "strings"

// IsConditionMet evaluates a "<index>=<a>,<b>,..." condition: it holds when
// previousAnswer equals one of the listed answers exactly. The index part is
// not consulted. A condition without '=' never holds.
func IsConditionMet(condition string, previousAnswer string) bool {
	_, valid, ok := strings.Cut(condition, "=")
	if !ok {
		return false
	}
	for _, v := range strings.Split(valid, ",") {
		if v == previousAnswer {
			return true
		}
	}
	return false
}
