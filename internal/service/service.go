// Package service implements the conversation orchestration on top of
// the assistant protocol and the operation registry.
package service

import (
	"github.com/flatout-solutions/rental-assistant/internal/assistant"
	"github.com/flatout-solutions/rental-assistant/internal/config"
	"github.com/flatout-solutions/rental-assistant/internal/policy"
	"github.com/flatout-solutions/rental-assistant/internal/registry"
	"github.com/flatout-solutions/rental-assistant/internal/repository"
)

type Service struct {
	store        repository.Store
	assistant    assistant.Client
	registry     *registry.Registry
	policyEngine *policy.Engine
	config       *config.Config
}

func New(store repository.Store, client assistant.Client, reg *registry.Registry, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		assistant:    client,
		registry:     reg,
		policyEngine: policyEngine,
		config:       cfg,
	}
}
