package feature

import "strings"

var compoundReplacer = strings.NewReplacer(
	" @-@ ", "-",
	"@@ ", "",
)

// JoinCompounds undoes compound and subword splitting in rendered output:
// "Haus @-@ Tür" becomes "Haus-Tür" and "Haus@@ tür" becomes "Haustür".
func JoinCompounds(text string) string {
	return strings.TrimSuffix(compoundReplacer.Replace(text), "@@")
}
