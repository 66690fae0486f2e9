package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/entity"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/repository/memory"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/events"
	"copyflow-be/pkg/gateway"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type workflowFixture struct {
	svc       IWorkflowService
	slots     ISlotService
	gateway   *fakeGateway
	publisher *recordingPublisher
	wf        uuid.UUID
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	slots, _, _ := newMemorySlotService()
	return newWorkflowFixtureWithSlots(t, slots)
}

func newWorkflowFixtureWithSlots(t *testing.T, slots ISlotService) *workflowFixture {
	t.Helper()
	pages, err := workflow.DefaultPages()
	require.NoError(t, err)

	gw := &fakeGateway{
		copy:   gateway.Copy{Text: "Fresh fiber, zero contracts.", Source: gateway.SourceRemote},
		design: gateway.Design{HTML: "<h1>Fresh fiber</h1>", Language: "en", Source: gateway.SourceRemote},
		comparison: gateway.Comparison{
			Similarity: 80, ContentMatch: 70, Structure: 60, Compatibility: 90, Source: gateway.SourceRemote,
		},
	}
	pub := &recordingPublisher{}

	svc := NewWorkflowService(
		pages,
		memory.NewPageSessionRepository(time.Hour),
		slots,
		ingestion.NewExtractor(),
		gw,
		pub,
		nil,
		logger.NewNopLogger(),
		SessionConfig{Secret: testSecret, TTL: time.Hour},
	)
	svc.(*workflowService).now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }

	return &workflowFixture{svc: svc, slots: slots, gateway: gw, publisher: pub, wf: uuid.New()}
}

func textFile(name, body string) dto.UploadFile {
	return dto.UploadFile{Name: name, ContentType: "text/plain", Data: []byte(body)}
}

func (f *workflowFixture) generatedBriefing(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, f.wf, "briefing", []dto.UploadFile{textFile("brief.txt", "Launch the summer fiber offer")})
	require.NoError(t, err)
	res, err := f.svc.Generate(ctx, f.wf, "briefing", nil)
	require.NoError(t, err)
	require.Equal(t, workflow.StageGenerated, res.Session.Stage)
}

func TestWorkflowService_StartSignsSessionToken(t *testing.T) {
	f := newWorkflowFixture(t)

	res, err := f.svc.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.WorkflowId)
	assert.Len(t, res.Pages, 3)

	token, err := jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, res.WorkflowId.String(), claims["workflow_id"])
}

func TestWorkflowService_BriefingToDesignHandoff(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.generatedBriefing(t)

	assert.Equal(t, "Launch the summer fiber offer", f.gateway.copyReqs[0].Briefing)
	assert.Equal(t, "brief.txt", f.gateway.copyReqs[0].FileName)

	edit, err := f.svc.Edit(ctx, f.wf, "briefing", &dto.EditContentRequest{Content: "Edited copy"})
	require.NoError(t, err)
	assert.True(t, edit.Effect.FirstEdit)

	_, err = f.svc.Navigate(ctx, f.wf, "briefing")
	assert.ErrorIs(t, err, workflow.ErrDirty)

	_, err = f.svc.Confirm(ctx, f.wf, "briefing")
	require.NoError(t, err)

	confirmed, found, err := f.slots.Get(ctx, f.wf, workflow.SlotConfirmedCopy)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Edited copy", confirmed.Value)

	nav, err := f.svc.Navigate(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, "design", nav.NextPage)

	open, err := f.svc.Open(ctx, f.wf, "design")
	require.NoError(t, err)
	assert.True(t, open.Preloaded)
	assert.Equal(t, workflow.StageSourceLoaded, open.Session.Stage)
	assert.Equal(t, "Edited copy", open.Session.Sources[0].Content)
	assert.Equal(t, workflow.SlotGeneratedCopyForDesign, open.Session.Sources[0].FromSlot)

	_, found, err = f.slots.Get(ctx, f.wf, workflow.SlotGeneratedCopyForDesign)
	require.NoError(t, err)
	assert.False(t, found, "hand-off slot is consumed on preload")

	again, err := f.svc.Open(ctx, f.wf, "design")
	require.NoError(t, err)
	assert.False(t, again.Preloaded)

	_, err = f.svc.Generate(ctx, f.wf, "design", &dto.GenerateRequest{Language: "en"})
	require.NoError(t, err)
	require.Len(t, f.gateway.designReqs, 1)
	assert.Equal(t, defaultTemplate, f.gateway.designReqs[0].Template)
	assert.Equal(t, "NL", f.gateway.designReqs[0].Language)

	assert.Equal(t, []string{
		events.StageSourceLoaded,
		events.StageGenerated,
		events.StageEdited,
		events.StageConfirmed,
		events.StageNavigated,
		events.StagePreloaded,
		events.StageGenerated,
	}, f.publisher.types())
}

func TestWorkflowService_SaveWritesDurableSlots(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.generatedBriefing(t)

	res, err := f.svc.Save(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SavedAt)

	saved, found, err := f.slots.Get(ctx, f.wf, workflow.SlotSavedCopy)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Fresh fiber, zero contracts.", saved.Value)

	_, err = f.svc.Save(ctx, f.wf, "design")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestWorkflowService_UploadValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	tests := []struct {
		name  string
		page  string
		files []dto.UploadFile
		want  error
	}{
		{"unknown page", "nope", []dto.UploadFile{textFile("a.txt", "x")}, workflow.ErrUnknownPage},
		{"wrong count", "compare", []dto.UploadFile{textFile("a.txt", "x")}, workflow.ErrSourceCount},
		{"unsupported", "briefing", []dto.UploadFile{textFile("a.exe", "x")}, ingestion.ErrUnsupportedFileType},
		{"empty", "briefing", []dto.UploadFile{textFile("a.txt", "   ")}, ingestion.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, f.wf, tt.page, tt.files)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	view, err := f.svc.View(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageEmpty, view.Session.Stage)
}

func TestWorkflowService_GenerationFailureKeepsStage(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	_, err := f.svc.Upload(ctx, f.wf, "briefing", []dto.UploadFile{textFile("brief.txt", "Brief")})
	require.NoError(t, err)

	f.gateway.err = gateway.ErrUnavailable
	_, err = f.svc.Generate(ctx, f.wf, "briefing", nil)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)

	view, err := f.svc.View(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageSourceLoaded, view.Session.Stage)
	assert.False(t, view.Session.Pending)
	assert.Contains(t, f.publisher.types(), events.StageGenerationFailed)
}

func TestWorkflowService_ResetMakesGenerationStale(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	_, err := f.svc.Upload(ctx, f.wf, "briefing", []dto.UploadFile{textFile("brief.txt", "Brief")})
	require.NoError(t, err)

	f.gateway.block = true
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(ctx, f.wf, "briefing", nil)
		done <- err
	}()

	require.Eventually(t, func() bool {
		view, err := f.svc.View(ctx, f.wf, "briefing")
		return err == nil && view.Session.Pending
	}, time.Second, 5*time.Millisecond)

	_, err = f.svc.Reset(ctx, f.wf, "briefing")
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, workflow.ErrStaleGeneration)
	case <-time.After(time.Second):
		t.Fatal("generation did not observe reset")
	}

	view, err := f.svc.View(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageEmpty, view.Session.Stage)
	assert.Empty(t, view.Session.Output)
}

func TestWorkflowService_CompareHandoff(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	_, err := f.svc.Confirm(ctx, f.wf, "compare")
	assert.ErrorIs(t, err, workflow.ErrNotConfirmable)

	_, err = f.svc.Upload(ctx, f.wf, "compare", []dto.UploadFile{
		textFile("brief.txt", "Summer offer brief"),
		textFile("copy.txt", "Summer offer copy"),
	})
	require.NoError(t, err)

	res, err := f.svc.Generate(ctx, f.wf, "compare", nil)
	require.NoError(t, err)
	assert.Equal(t, 80, res.Session.Scores["similarity"])
	assert.Contains(t, res.Session.Output, "brief.txt vs copy.txt")

	_, err = f.svc.Edit(ctx, f.wf, "compare", &dto.EditContentRequest{Content: "x"})
	assert.ErrorIs(t, err, workflow.ErrNotEditable)

	nav, err := f.svc.Navigate(ctx, f.wf, "compare")
	require.NoError(t, err)
	assert.Equal(t, "design", nav.NextPage)

	raw, found, err := f.slots.Get(ctx, f.wf, workflow.SlotCompareFile1)
	require.NoError(t, err)
	require.True(t, found)
	var doc gateway.Document
	require.NoError(t, json.Unmarshal([]byte(raw.Value), &doc))
	assert.Equal(t, "brief.txt", doc.Name)

	cmp := NewComparisonService(ingestion.NewExtractor(), f.gateway, f.slots)
	out, err := cmp.GenerateFromHandoff(ctx, f.wf)
	require.NoError(t, err)
	assert.Equal(t, "Fresh fiber, zero contracts.", out.Content)

	_, err = f.svc.Reset(ctx, f.wf, "compare")
	require.NoError(t, err)
	_, found, err = f.slots.Get(ctx, f.wf, workflow.SlotCompareFile1)
	require.NoError(t, err)
	assert.False(t, found, "reset clears owned slots")
}

func TestWorkflowService_EventsWithoutDatabase(t *testing.T) {
	f := newWorkflowFixture(t)
	got, err := f.svc.Events(context.Background(), f.wf, "", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// failingStore refuses every write while fail is set.
type failingStore struct {
	*memory.SlotStore
	fail bool
}

func (f *failingStore) Put(ctx context.Context, slot *entity.WorkflowSlot) error {
	if f.fail {
		return errors.New("slot store offline")
	}
	return f.SlotStore.Put(ctx, slot)
}

func TestWorkflowService_ConfirmKeepsStageWhenSlotsFail(t *testing.T) {
	ctx := context.Background()
	durable := &failingStore{SlotStore: memory.NewSlotStore(0), fail: true}
	f := newWorkflowFixtureWithSlots(t, NewSlotService(durable, memory.NewSlotStore(time.Hour)))
	f.generatedBriefing(t)

	_, err := f.svc.Confirm(ctx, f.wf, "briefing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot store offline")

	open, err := f.svc.Open(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageGenerated, open.Session.Stage)
	assert.Empty(t, open.Session.Confirmed)
	assert.False(t, open.View.NavigationAllowed)

	_, err = f.svc.Navigate(ctx, f.wf, "briefing")
	assert.ErrorIs(t, err, workflow.ErrNotConfirmed)

	for _, evt := range f.publisher.types() {
		assert.NotEqual(t, events.StageConfirmed, evt)
	}

	durable.fail = false
	res, err := f.svc.Confirm(ctx, f.wf, "briefing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageConfirmed, res.Session.Stage)
	confirmed, found, err := f.slots.Get(ctx, f.wf, workflow.SlotConfirmedCopy)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Fresh fiber, zero contracts.", confirmed.Value)
}
