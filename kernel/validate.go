package kernel

import (
	"fmt"

	"amulet.dev/core/clock"
	"amulet.dev/core/rights"
	"amulet.dev/core/suite"
)

// validationCtx carries everything a validation rule needs to judge a
// command, gathered once up front so rules stay pure functions over it.
type validationCtx struct {
	cmd      Command
	cap      Capability
	required rights.Mask
	localLc  Lclock
	provider suite.Provider
}

// rule mirrors the teacher pack's catf validation rules: a named, total
// function from context to error. Rules run in a fixed order and the first
// failure wins (spec §4.7).
type rule struct {
	id    string
	apply func(*validationCtx) error
}

// commandRules covers every check that only needs the command, the
// capability it names, and the local clock. Revocation and expiry are
// judged by the caller against a CapabilityStatus taken from the same
// store read, ahead of this pipeline, since they depend on state the
// capability record alone doesn't carry.
var commandRules = []rule{
	{"signature-valid", ruleSignatureValid},
	{"rights-sufficient", ruleRightsSufficient},
	{"lclock-not-past", ruleLclockNotPast},
}

func ruleSuiteMatch(c *validationCtx) error {
	if c.cmd.SuiteTag != c.cap.SuiteTag {
		return ErrAlgSuiteMismatch
	}
	return nil
}

func ruleSignatureValid(c *validationCtx) error {
	ok, err := c.provider.Verify(c.cmd.SuiteTag, c.cap.Holder, c.cmd.SignableBytes(), c.cmd.Signature)
	if err != nil {
		return wrapErr(KindCrypto, ErrCryptoProvider.Code, fmt.Sprintf("suite %s: %v", c.cmd.SuiteTag, err), err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

func ruleRightsSufficient(c *validationCtx) error {
	granted := rights.Canonicalise(c.cap.Rights)
	if !rights.Sufficient(granted, c.required) {
		return ErrInsufficientRights
	}
	return nil
}

func ruleLclockNotPast(c *validationCtx) error {
	if !clock.AcceptCommand(c.cmd.Lclock, c.localLc) {
		return ErrLclockInPast
	}
	return nil
}

// validateCommand runs the full first-failure-wins pipeline (spec §4.7):
// capability lookup (by the caller, which supplies cap and status), suite
// match, revocation, expiry, signature, rights, and clock monotonicity, in
// that order. Suite match comes first among the capability-shape checks: a
// command signed under a suite the capability never declared is malformed
// independent of that capability's lifecycle.
func validateCommand(cmd Command, cap Capability, status CapabilityStatus, required rights.Mask, localLc Lclock, provider suite.Provider) error {
	ctx := &validationCtx{cmd: cmd, cap: cap, required: required, localLc: localLc, provider: provider}

	if err := ruleSuiteMatch(ctx); err != nil {
		return err
	}

	switch status {
	case CapabilityRevoked:
		return ErrCapabilityRevoked
	case CapabilityExpired:
		return ErrCapabilityExpired
	}

	for _, r := range commandRules {
		if err := r.apply(ctx); err != nil {
			return err
		}
	}
	return nil
}
