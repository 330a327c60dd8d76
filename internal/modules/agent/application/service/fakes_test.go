package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

func testConfig() *config.Config {
	return &config.Config{
		AgentConfig: config.AgentConfig{
			SimilarityThreshold:  0.80,
			AmbiguityMargin:      0.05,
			TopK:                 5,
			MaxToolIterations:    10,
			ActionTTLMinutes:     60,
			SweepIntervalMinutes: 5,
			EmbeddingDimensions:  3,
		},
	}
}

// fakeEmbedder 返回固定向量，未登记的文本统一返回 defaultVec
type fakeEmbedder struct {
	vectors    map[string][]float64
	defaultVec []float64
	err        error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors:    map[string][]float64{},
		defaultVec: []float64{1, 0, 0},
	}
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = f.defaultVec
		}
	}
	return out, nil
}

type fakeExampleRepo struct {
	mu       sync.Mutex
	nextId   int64
	examples []*entity.ToolExample
	scored   []repository.ScoredExample
	usage    map[int64]int
}

func newFakeExampleRepo() *fakeExampleRepo {
	return &fakeExampleRepo{usage: map[int64]int{}}
}

func (r *fakeExampleRepo) CreateExample(ctx context.Context, example *entity.ToolExample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	example.Id = r.nextId
	r.examples = append(r.examples, example)
	return nil
}

func (r *fakeExampleRepo) SearchSimilar(ctx context.Context, embedding entity.Vector, candidateIds []int64, domain string, topK int, minScore float64) ([]repository.ScoredExample, error) {
	if domain == "" {
		return r.scored, nil
	}
	var out []repository.ScoredExample
	for _, s := range r.scored {
		if s.Example.Domain == domain {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeExampleRepo) FindByToolAndQuery(ctx context.Context, toolName, queryText string) (*entity.ToolExample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.examples {
		if e.ToolName == toolName && e.QueryText == queryText {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeExampleRepo) IncrementUsage(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[id]++
	return nil
}

func (r *fakeExampleRepo) CountByDomain(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, e := range r.examples {
		out[e.Domain]++
	}
	return out, nil
}

func (r *fakeExampleRepo) DeleteSeeded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.examples[:0]
	for _, e := range r.examples {
		if e.IsLearned {
			kept = append(kept, e)
		}
	}
	r.examples = kept
	return nil
}

// fakeActionRepo 内存版待审批动作仓储，状态迁移保持条件更新语义
type fakeActionRepo struct {
	mu      sync.Mutex
	nextId  int64
	actions map[string]*entity.PendingAction
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: map[string]*entity.PendingAction{}}
}

func (r *fakeActionRepo) CreateAction(ctx context.Context, action *entity.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	action.Id = r.nextId
	cp := *action
	r.actions[action.ActionUuid] = &cp
	return nil
}

func (r *fakeActionRepo) GetByUuid(ctx context.Context, actionUuid string) (*entity.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[actionUuid]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeActionRepo) GetByExternalRef(ctx context.Context, externalRef string) (*entity.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a.ExternalRef.Valid && a.ExternalRef.String == externalRef {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeActionRepo) AttachExternalRef(ctx context.Context, actionUuid, externalRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[actionUuid]
	if !ok || a.Status != entity.ActionStatusPending {
		return entity.ErrInvalidTransition
	}
	a.ExternalRef.Valid = true
	a.ExternalRef.String = externalRef
	return nil
}

func (r *fakeActionRepo) TransitionStatus(ctx context.Context, actionUuid, fromStatus, toStatus string, update repository.ActionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[actionUuid]
	if !ok || a.Status != fromStatus {
		return entity.ErrInvalidTransition
	}
	a.Status = toStatus
	if update.ResultJson != "" {
		a.ResultJson = update.ResultJson
	}
	if update.ErrorMsg != "" {
		a.ErrorMsg = update.ErrorMsg
	}
	if update.ResolvedBy != "" {
		a.ResolvedBy = update.ResolvedBy
	}
	switch toStatus {
	case entity.ActionStatusApproved, entity.ActionStatusRejected, entity.ActionStatusExpired:
		a.ResolvedAt.Valid = true
		a.ResolvedAt.Time = time.Now()
	}
	return nil
}

func (r *fakeActionRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PendingAction
	for _, a := range r.actions {
		if a.WallClockExpired(now) {
			cp := *a
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeActionRepo) ListBySession(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PendingAction
	for _, a := range r.actions {
		if a.SessionId == sessionId {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) ListPendingByRequester(ctx context.Context, requesterId string, limit, offset int) ([]*entity.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PendingAction
	for _, a := range r.actions {
		if a.RequesterId == requesterId && a.Status == entity.ActionStatusPending {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) DeleteBySession(ctx context.Context, sessionId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uuid, a := range r.actions {
		if a.SessionId == sessionId {
			delete(r.actions, uuid)
		}
	}
	return nil
}

// fakeExecutor 按工具名返回预置结果或错误
type fakeExecutor struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{results: map[string]string{}, errs: map[string]error{}}
}

func (e *fakeExecutor) Execute(ctx context.Context, toolName string, argsJSON string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, toolName)
	if err, ok := e.errs[toolName]; ok {
		return "", err
	}
	if res, ok := e.results[toolName]; ok {
		return res, nil
	}
	return `{"ok": true}`, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	nextId   int64
	sessions []*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo { return &fakeSessionRepo{} }

func (r *fakeSessionRepo) CreateSession(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	session.Id = r.nextId
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *fakeSessionRepo) GetSessionByUuid(ctx context.Context, sessionUuid string) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.SessionUuid == sessionUuid {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetSessionById(ctx context.Context, sessionId int64) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Id == sessionId {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) ListSessions(ctx context.Context, adminUserId string, limit, offset int) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if s.AdminUserId == adminUserId {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateSessionTitle(ctx context.Context, sessionId int64, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Id == sessionId {
			s.Title = title
		}
	}
	return nil
}

func (r *fakeSessionRepo) TouchSession(ctx context.Context, sessionId int64) error {
	return nil
}

func (r *fakeSessionRepo) DeleteSession(ctx context.Context, sessionId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.Id != sessionId {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextId int64
	msgs   map[int64][]*entity.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: map[int64][]*entity.ChatMessage{}}
}

func (r *fakeMessageRepo) AppendMessage(ctx context.Context, msg *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	msg.Id = r.nextId
	msg.CreatedAt = time.Now()
	r.msgs[msg.SessionId] = append(r.msgs[msg.SessionId], msg)
	return nil
}

func (r *fakeMessageRepo) ListMessages(ctx context.Context, sessionId int64, limit, offset int) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.ChatMessage(nil), r.msgs[sessionId]...), nil
}

func (r *fakeMessageRepo) CountMessages(ctx context.Context, sessionId int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.msgs[sessionId])), nil
}

func (r *fakeMessageRepo) DeleteBySession(ctx context.Context, sessionId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.msgs, sessionId)
	return nil
}

type fakeMetricsRepo struct {
	mu     sync.Mutex
	totals map[int64]*entity.ChatSessionMetrics
}

func newFakeMetricsRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{totals: map[int64]*entity.ChatSessionMetrics{}}
}

func (r *fakeMetricsRepo) AddUsage(ctx context.Context, sessionId int64, delta repository.MetricsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.totals[sessionId]
	if !ok {
		m = &entity.ChatSessionMetrics{SessionId: sessionId}
		r.totals[sessionId] = m
	}
	m.PromptTokens += delta.PromptTokens
	m.CompletionTokens += delta.CompletionTokens
	m.TotalTokens += delta.TotalTokens
	m.ModelCalls += delta.ModelCalls
	m.ToolCalls += delta.ToolCalls
	m.TotalDurationMs += delta.DurationMs
	return nil
}

func (r *fakeMetricsRepo) GetBySession(ctx context.Context, sessionId int64) (*entity.ChatSessionMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals[sessionId], nil
}

func (r *fakeMetricsRepo) DeleteBySession(ctx context.Context, sessionId int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.totals, sessionId)
	return nil
}

// fakeChatModel 按脚本依次吐出预置回复，failures 大于零时先失败对应次数
type fakeChatModel struct {
	mu       sync.Mutex
	script   []*schema.Message
	failures int
	history  [][]*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, input)
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("fake chat model transient failure")
	}
	if len(m.script) == 0 {
		return nil, errors.New("fake chat model script exhausted")
	}
	next := m.script[0]
	m.script = m.script[1:]
	return next, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

// fakeRouter 固定路由判定
type fakeRouter struct {
	mu        sync.Mutex
	decision  *RouteDecision
	confirmed []string
}

func (f *fakeRouter) Resolve(ctx context.Context, query, domainHint string) (*RouteDecision, error) {
	return f.decision, nil
}

func (f *fakeRouter) ConfirmMatch(ctx context.Context, toolName, query string, matchedExampleId int64, embedding entity.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, toolName)
	return nil
}

// fakeGateway 只记录审批请求
type fakeGateway struct {
	mu        sync.Mutex
	requested []*entity.PendingAction
}

func (f *fakeGateway) RequestApproval(ctx context.Context, action *entity.PendingAction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, action)
}

func (f *fakeGateway) Decide(ctx context.Context, actionUuid, decision, reviewer string) (*entity.PendingAction, error) {
	return nil, errors.New("not supported in fake")
}

func (f *fakeGateway) DecideByCallback(ctx context.Context, callbackActionId, reviewer string) (*entity.PendingAction, error) {
	return nil, errors.New("not supported in fake")
}

func (f *fakeGateway) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeGateway) BindResumer(resumer ActionResumer) {}
