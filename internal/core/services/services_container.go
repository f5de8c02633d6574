package services

import (
	portsrepo "github.com/SscSPs/fortune_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
	"github.com/SscSPs/fortune_desk/internal/platform/config"
)

// Collaborators are the adapters the core talks to. Nil fields disable the
// corresponding behaviour.
type Collaborators struct {
	Queue     portssvc.JobEnqueuer
	Inspector portssvc.QueueInspector
	Notifier  portssvc.Notifier
	Artifacts portssvc.ArtifactStore
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, collab Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// the ledger is composed into request creation and signup, so it comes first
	container.Ledger = NewLedgerService(repos.TxManager, repos.UserRepo, repos.LedgerRepo)

	var fortuneOpts []FortuneServiceOption
	if collab.Queue != nil {
		fortuneOpts = append(fortuneOpts, WithJobEnqueuer(collab.Queue))
	}
	container.Fortune = NewFortuneService(repos.TxManager, repos.TypeRepo, repos.RequestRepo, container.Ledger, fortuneOpts...)

	var publisherOpts []PublisherOption
	if collab.Notifier != nil {
		publisherOpts = append(publisherOpts, WithPublishNotifier(collab.Notifier))
	}
	if collab.Artifacts != nil {
		publisherOpts = append(publisherOpts, WithArtifactStore(collab.Artifacts))
	}
	container.Publisher = NewPublisherService(repos.PublishedRepo, repos.RequestRepo, publisherOpts...)

	container.Review = NewReviewService(repos.TxManager, repos.ResultRepo, container.Fortune, container.Publisher)
	container.Auth = NewAuthService(cfg, repos.TxManager, repos.UserRepo, repos.AdminRepo, container.Ledger)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.Queue = collab.Inspector

	return container
}
