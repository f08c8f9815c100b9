// Package verifier runs the post-deployment checks of `deployctl verify`.
//
// Checks are independent and run one after another; a failing check does not stop
// the ones after it. Checks without configuration are skipped.
package verifier
