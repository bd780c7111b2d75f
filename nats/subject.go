package nats

import (
	"fmt"
	"strings"
)

func GetTableStatusSubject(tableID string) string {
	return fmt.Sprintf("table.%s.status", tableID)
}

func GetTable2PlayerSubject(tableID string, playerID string) string {
	return fmt.Sprintf("table.%s.player.%s", tableID, playerID)
}

func GetPlayer2TableSubject(tableID string) string {
	return fmt.Sprintf("table.%s.action", tableID)
}

// AllPlayer2TableSubjects matches the action subject of every table.
const AllPlayer2TableSubjects = "table.*.action"

// TableIDFromSubject extracts the table id from any table.<id>.* subject.
func TableIDFromSubject(subject string) (string, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) < 3 || parts[0] != "table" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
