// Package notify prints the status lines deployctl shows while a command runs.
//
// Every line carries a symbol that tells the reader what kind of step it is:
// success (✔), error (✗), warning (⚠), info (ℹ), activity (►) and generate (✚).
// Stage titles start with an emoji instead. The [StageWriter] inserts a blank line
// before every title after the first, so command handlers never track spacing.
package notify
