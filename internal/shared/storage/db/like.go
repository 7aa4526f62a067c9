package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a "contains" pattern for ILIKE ... ESCAPE '\' that
// matches substr literally.
func LikePattern(substr string) string {
	return "%" + likeEscaper.Replace(substr) + "%"
}
