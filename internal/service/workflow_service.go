package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/repository/scope"
	"copyflow-be/internal/repository/specification"
	"copyflow-be/internal/repository/unitofwork"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/events"
	"copyflow-be/pkg/gateway"
	"copyflow-be/pkg/langdetect"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTemplate = "modern"

// PageSessionStore holds the live page sessions, see memory.PageSessionRepository.
type PageSessionStore interface {
	GetOrCreate(workflowId uuid.UUID, page string) *workflow.PageSession
	Delete(workflowId uuid.UUID, page string)
}

type IWorkflowService interface {
	Start(ctx context.Context) (*dto.StartWorkflowResponse, error)
	Open(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error)
	View(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error)
	Upload(ctx context.Context, workflowId uuid.UUID, page string, files []dto.UploadFile) (*dto.PageResponse, error)
	Generate(ctx context.Context, workflowId uuid.UUID, page string, req *dto.GenerateRequest) (*dto.PageResponse, error)
	Edit(ctx context.Context, workflowId uuid.UUID, page string, req *dto.EditContentRequest) (*dto.EditContentResponse, error)
	Confirm(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error)
	Save(ctx context.Context, workflowId uuid.UUID, page string) (*dto.SaveCopyResponse, error)
	Navigate(ctx context.Context, workflowId uuid.UUID, page string) (*dto.NavigateResponse, error)
	Reset(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error)
	Events(ctx context.Context, workflowId uuid.UUID, page string, after int64) ([]*dto.WorkflowEventResponse, error)
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type workflowService struct {
	pages       *workflow.Pages
	controllers map[string]*workflow.Controller
	sessions    PageSessionStore
	slots       ISlotService
	extractor   *ingestion.Extractor
	gateway     gateway.Gateway
	publisher   IPublisherService
	uowFactory  unitofwork.RepositoryFactory
	logger      logger.ILogger
	session     SessionConfig
	now         func() time.Time
}

func NewWorkflowService(
	pages *workflow.Pages,
	sessions PageSessionStore,
	slots ISlotService,
	extractor *ingestion.Extractor,
	gw gateway.Gateway,
	publisher IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	session SessionConfig,
) IWorkflowService {
	s := &workflowService{
		pages:       pages,
		controllers: make(map[string]*workflow.Controller),
		sessions:    sessions,
		slots:       slots,
		extractor:   extractor,
		gateway:     gw,
		publisher:   publisher,
		uowFactory:  uowFactory,
		logger:      log,
		session:     session,
		now:         time.Now,
	}
	for _, cfg := range pages.All() {
		s.controllers[cfg.ID] = workflow.NewController(cfg).WithClock(func() time.Time { return s.now() })
	}
	return s
}

func (s *workflowService) page(workflowId uuid.UUID, page string) (*workflow.Controller, *workflow.PageSession, error) {
	ctrl, ok := s.controllers[page]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", workflow.ErrUnknownPage, page)
	}
	return ctrl, s.sessions.GetOrCreate(workflowId, page), nil
}

func (s *workflowService) response(ctrl *workflow.Controller, session *workflow.PageSession) *dto.PageResponse {
	return &dto.PageResponse{
		View:    ctrl.View(session),
		Session: session.Snapshot(),
	}
}

func (s *workflowService) publish(ctx context.Context, session *workflow.PageSession, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	snap := session.Snapshot()
	evt := events.NewStageEvent(snap.WorkflowID, snap.Page, eventType, snap.Stage.String(), data)
	evt.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("WORKFLOW", "Failed to publish stage event", map[string]interface{}{
			"type":  eventType,
			"page":  snap.Page,
			"error": err.Error(),
		})
	}
}

func (s *workflowService) Start(ctx context.Context) (*dto.StartWorkflowResponse, error) {
	workflowId := uuid.New()
	ttl := s.session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expiresAt := s.now().Add(ttl)

	claims := jwt.MapClaims{
		"workflow_id": workflowId.String(),
		"exp":         expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.session.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("WORKFLOW", "Workflow session started", map[string]interface{}{"workflow_id": workflowId.String()})
	return &dto.StartWorkflowResponse{
		WorkflowId: workflowId,
		Token:      signed,
		ExpiresAt:  expiresAt,
		Pages:      s.pages.All(),
	}, nil
}

// Open returns the page and, when it is still empty, fills it from its
// preload slots. Consumed hand-off slots are removed.
func (s *workflowService) Open(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	preloaded := false
	if cfg := ctrl.Page(); len(cfg.Preload) > 0 {
		values, err := s.slots.Values(ctx, workflowId, cfg.Preload...)
		if err != nil {
			return nil, err
		}
		var consume []string
		preloaded, consume = ctrl.Preload(session, values)
		if preloaded {
			if err := s.slots.ClearMany(ctx, workflowId, consume...); err != nil {
				return nil, err
			}
			s.publish(ctx, session, events.StagePreloaded, map[string]interface{}{
				"from_slot": session.Snapshot().Sources[0].FromSlot,
			})
		}
	}

	res := s.response(ctrl, session)
	res.Preloaded = preloaded
	return res, nil
}

func (s *workflowService) View(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}
	return s.response(ctrl, session), nil
}

// Upload extracts every file before touching the page, so a failed
// extraction leaves the page at its previous stage.
func (s *workflowService) Upload(ctx context.Context, workflowId uuid.UUID, page string, files []dto.UploadFile) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}
	cfg := ctrl.Page()
	if len(files) != cfg.Sources {
		return nil, fmt.Errorf("%w: page %s expects %d, got %d", workflow.ErrSourceCount, cfg.ID, cfg.Sources, len(files))
	}

	mode, err := ingestion.ParseMode(cfg.Extraction)
	if err != nil {
		return nil, err
	}
	refs, err := extractAll(ctx, s.extractor, mode, files)
	if err != nil {
		return nil, err
	}

	if err := ctrl.LoadSource(session, refs...); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	s.publish(ctx, session, events.StageSourceLoaded, map[string]interface{}{"files": names})
	return s.response(ctrl, session), nil
}

func (s *workflowService) Generate(ctx context.Context, workflowId uuid.UUID, page string, req *dto.GenerateRequest) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.GenerateRequest{}
	}

	ticket, err := ctrl.BeginGeneration(ctx, session)
	if err != nil {
		return nil, err
	}

	out, err := s.run(ticket, ctrl.Page(), req)
	if err != nil {
		// Aborting cancels the ticket context, so staleness is read from the
		// session rather than from ticket.Ctx.
		if !ctrl.AbortGeneration(session, ticket) {
			return nil, workflow.ErrStaleGeneration
		}
		s.publish(ctx, session, events.StageGenerationFailed, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	if !ctrl.CompleteGeneration(session, ticket, out) {
		return nil, workflow.ErrStaleGeneration
	}

	s.publish(ctx, session, events.StageGenerated, map[string]interface{}{
		"fallback":   out.Fallback,
		"generation": ticket.Token,
	})
	return s.response(ctrl, session), nil
}

func (s *workflowService) run(ticket workflow.Ticket, cfg workflow.PageConfig, req *dto.GenerateRequest) (workflow.Outcome, error) {
	switch cfg.Operation {
	case workflow.OperationGenerateCopy:
		src := ticket.Sources[0]
		c, err := s.gateway.GenerateCopy(ticket.Ctx, gateway.CopyRequest{
			Briefing: src.Content,
			FileName: src.Name,
			Keywords: req.Keywords,
		})
		if err != nil {
			return workflow.Outcome{}, err
		}
		return workflow.Outcome{Output: c.Text, Fallback: c.Source == gateway.SourceFallback}, nil

	case workflow.OperationGenerateDesign:
		input := ticket.Input()
		template := req.Template
		if template == "" {
			template = defaultTemplate
		}
		d, err := s.gateway.GenerateDesign(ticket.Ctx, gateway.DesignRequest{
			Copy:     input,
			Template: template,
			Language: langdetect.ResolveDesignCode(req.Language, input),
			Keywords: req.Keywords,
		})
		if err != nil {
			return workflow.Outcome{}, err
		}
		out := workflow.Outcome{Output: d.HTML, Fallback: d.Source == gateway.SourceFallback}
		if d.Metrics != nil {
			out.Scores = map[string]int{
				"layout":     d.Metrics.Layout,
				"typography": d.Metrics.Typography,
				"visual":     d.Metrics.Visual,
				"brand":      d.Metrics.Brand,
			}
		}
		return out, nil

	case workflow.OperationCompareFiles:
		a, b := documentOf(ticket.Sources[0]), documentOf(ticket.Sources[1])
		cmp, err := s.gateway.CompareFiles(ticket.Ctx, a, b)
		if err != nil {
			return workflow.Outcome{}, err
		}
		return workflow.Outcome{
			Output:   comparisonSummary(a, b, cmp),
			Scores:   cmp.Scores(),
			Fallback: cmp.Source == gateway.SourceFallback,
		}, nil
	}
	return workflow.Outcome{}, fmt.Errorf("%w: operation %s", workflow.ErrInvalidTransition, cfg.Operation)
}

func documentOf(ref workflow.SourceRef) gateway.Document {
	return gateway.Document{Name: ref.Name, Content: ref.Content, Type: ref.Type, Size: ref.Size}
}

func comparisonSummary(a, b gateway.Document, cmp gateway.Comparison) string {
	return fmt.Sprintf("%s vs %s\nSimilarity: %d%%\nContent match: %d%%\nStructure: %d%%\nCompatibility: %d%%",
		a.Name, b.Name, cmp.Similarity, cmp.ContentMatch, cmp.Structure, cmp.Compatibility)
}

func (s *workflowService) Edit(ctx context.Context, workflowId uuid.UUID, page string, req *dto.EditContentRequest) (*dto.EditContentResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	effect, err := ctrl.Edit(session, req.Content)
	if err != nil {
		return nil, err
	}
	if effect.FirstEdit {
		s.publish(ctx, session, events.StageEdited, map[string]interface{}{"warning": effect.Warning})
	}
	return &dto.EditContentResponse{Effect: effect, View: ctrl.View(session)}, nil
}

func (s *workflowService) Confirm(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	conf, err := ctrl.PrepareConfirm(session)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Apply(ctx, workflowId, conf.Writes); err != nil {
		return nil, err
	}
	if err := ctrl.CommitConfirm(session, conf); err != nil {
		return nil, err
	}

	s.publish(ctx, session, events.StageConfirmed, map[string]interface{}{"slots": slotNames(conf.Writes)})
	return s.response(ctrl, session), nil
}

func (s *workflowService) Save(ctx context.Context, workflowId uuid.UUID, page string) (*dto.SaveCopyResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	writes, err := ctrl.Save(session)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Apply(ctx, workflowId, writes); err != nil {
		return nil, err
	}

	res := &dto.SaveCopyResponse{Writes: writes}
	for _, w := range writes {
		if w.Slot == workflow.SlotSavedCopyDate {
			res.SavedAt = w.Value
		}
	}
	s.publish(ctx, session, events.StageSaved, map[string]interface{}{"saved_at": res.SavedAt})
	return res, nil
}

func (s *workflowService) Navigate(ctx context.Context, workflowId uuid.UUID, page string) (*dto.NavigateResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	writes, next, err := ctrl.Navigate(session)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Apply(ctx, workflowId, writes); err != nil {
		return nil, err
	}

	s.publish(ctx, session, events.StageNavigated, map[string]interface{}{
		"next_page": next,
		"slots":     slotNames(writes),
	})
	return &dto.NavigateResponse{NextPage: next, Writes: writes}, nil
}

func (s *workflowService) Reset(ctx context.Context, workflowId uuid.UUID, page string) (*dto.PageResponse, error) {
	ctrl, session, err := s.page(workflowId, page)
	if err != nil {
		return nil, err
	}

	owned := ctrl.Reset(session)
	if err := s.slots.ClearMany(ctx, workflowId, owned...); err != nil {
		return nil, err
	}

	s.publish(ctx, session, events.StageReset, map[string]interface{}{"cleared": owned})
	return s.response(ctrl, session), nil
}

func (s *workflowService) Events(ctx context.Context, workflowId uuid.UUID, page string, after int64) ([]*dto.WorkflowEventResponse, error) {
	result := make([]*dto.WorkflowEventResponse, 0)
	if s.uowFactory == nil {
		return result, nil
	}

	specs := []specification.Specification{
		specification.ByWorkflowID{WorkflowID: workflowId},
		specification.OccurredAfter{UnixMilli: after},
		specification.WithScope{Fn: scope.OrderByOccurredAsc},
	}
	if page != "" {
		specs = append(specs, specification.ByPage{Page: page})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.WorkflowEventRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	for _, e := range found {
		var payload map[string]any
		if len(e.Payload) > 0 {
			_ = json.Unmarshal(e.Payload, &payload)
		}
		result = append(result, &dto.WorkflowEventResponse{
			Id:         e.Id,
			Page:       e.Page,
			Type:       e.Type,
			Stage:      e.Stage,
			Payload:    payload,
			OccurredAt: e.OccurredAt,
		})
	}
	return result, nil
}

func slotNames(writes []workflow.SlotWrite) []string {
	names := make([]string, 0, len(writes))
	for _, w := range writes {
		names = append(names, w.Slot)
	}
	return names
}
