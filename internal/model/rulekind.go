// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"fmt"
	"sort"
	"strings"
)

// RuleKind is one of the host's fixed rule categories.
type RuleKind string

const (
	RuleKindAccountCorrelation    RuleKind = "AccountCorrelation"
	RuleKindAccountSelector       RuleKind = "AccountSelector"
	RuleKindActivityCorrelation   RuleKind = "ActivityCorrelation"
	RuleKindAfterProvisioning     RuleKind = "AfterProvisioning"
	RuleKindAlertCorrelation      RuleKind = "AlertCorrelation"
	RuleKindAlertMatch            RuleKind = "AlertMatch"
	RuleKindApprover              RuleKind = "Approver"
	RuleKindBeforeProvisioning    RuleKind = "BeforeProvisioning"
	RuleKindBuildMap              RuleKind = "BuildMap"
	RuleKindCertification         RuleKind = "Certification"
	RuleKindCorrelation           RuleKind = "Correlation"
	RuleKindIdentityCreation      RuleKind = "IdentityCreation"
	RuleKindFieldValue            RuleKind = "FieldValue"
	RuleKindIdentityAttribute     RuleKind = "IdentityAttribute"
	RuleKindIdentitySelector      RuleKind = "IdentitySelector"
	RuleKindManagerCorrelation    RuleKind = "ManagerCorrelation"
	RuleKindMergeMaps             RuleKind = "MergeMaps"
	RuleKindOwner                 RuleKind = "Owner"
	RuleKindPolicyNotification    RuleKind = "PolicyNotification"
	RuleKindPolicyViolation       RuleKind = "Policy"
	RuleKindPreIterate            RuleKind = "PreIterate"
	RuleKindPostIterate           RuleKind = "PostIterate"
	RuleKindRequestObjectSelector RuleKind = "RequestObjectSelector"
	RuleKindTaskCompletion        RuleKind = "TaskCompletion"
	RuleKindValidation            RuleKind = "Validation"
	RuleKindWorkflow              RuleKind = "Workflow"
)

var ruleKinds = map[string]RuleKind{}

func init() {
	for _, k := range []RuleKind{
		RuleKindAccountCorrelation, RuleKindAccountSelector, RuleKindActivityCorrelation,
		RuleKindAfterProvisioning, RuleKindAlertCorrelation, RuleKindAlertMatch,
		RuleKindApprover, RuleKindBeforeProvisioning, RuleKindBuildMap,
		RuleKindCertification, RuleKindCorrelation, RuleKindIdentityCreation,
		RuleKindFieldValue, RuleKindIdentityAttribute, RuleKindIdentitySelector,
		RuleKindManagerCorrelation, RuleKindMergeMaps, RuleKindOwner,
		RuleKindPolicyNotification, RuleKindPolicyViolation, RuleKindPreIterate,
		RuleKindPostIterate, RuleKindRequestObjectSelector, RuleKindTaskCompletion,
		RuleKindValidation, RuleKindWorkflow,
	} {
		ruleKinds[strings.ToLower(string(k))] = k
	}
}

// ParseRuleKind resolves a kind name case-insensitively against the catalog.
func ParseRuleKind(s string) (RuleKind, error) {
	k, ok := ruleKinds[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown rule kind %q", s)
	}
	return k, nil
}

// RuleKinds returns the catalog in sorted order.
func RuleKinds() []RuleKind {
	out := make([]RuleKind, 0, len(ruleKinds))
	for _, k := range ruleKinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
