package app

import (
	"github.com/bannerworks/alertbanner/internal/content"
)

// WorkflowPolicy converts the feature flags into the content model's policy.
func (c FeatureConfig) WorkflowPolicy() content.WorkflowPolicy {
	policy := content.WorkflowPolicy{
		TenantDefaultLanguage: c.TranslationWorkflow.DefaultLanguage,
		WorkflowEnabled:       c.TranslationWorkflow.Enabled,
	}
	if policy.TenantDefaultLanguage == "" {
		policy.TenantDefaultLanguage = "en-us"
	}
	if policy.WorkflowEnabled {
		policy.DefaultStatus = content.StatusDraft
	}
	return policy
}
