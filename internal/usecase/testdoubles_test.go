package usecase_test

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// fakeGenAI scripts GenerateText responses per call and records prompts.
type fakeGenAI struct {
	results  []domain.GenResult
	errs     []error
	prompts  []string
	embedFn  func(text string) ([]float32, error)
	genCalls int
}

func (f *fakeGenAI) GenerateText(_ domain.Context, prompt string, _ domain.GenOptions) (domain.GenResult, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.genCalls
	f.genCalls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var res domain.GenResult
	if i < len(f.results) {
		res = f.results[i]
	}
	return res, err
}

func (f *fakeGenAI) EmbedText(_ domain.Context, text string) ([]float32, error) {
	if f.embedFn != nil {
		return f.embedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

// fakeEmbedder implements domain.EmbeddingClient with fixed vectors.
type fakeEmbedder struct {
	dim     int
	vec     []float32
	err     error
	batched [][]string
}

func (f *fakeEmbedder) Embed(_ domain.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) EmbedBatch(_ domain.Context, texts []string) [][]float32 {
	f.batched = append(f.batched, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// memDocRepo is an in-memory DocumentRepository keyed like the real one.
type memDocRepo struct {
	docs       map[string]domain.Document
	replaceErr error
	nextID     int
}

func newMemDocRepo() *memDocRepo { return &memDocRepo{docs: map[string]domain.Document{}} }

func docKey(owner string, sessionID *string, docType string) string {
	sid := ""
	if sessionID != nil {
		sid = *sessionID
	}
	return owner + "|" + sid + "|" + docType
}

func (r *memDocRepo) Replace(_ domain.Context, d domain.Document) (string, error) {
	if r.replaceErr != nil {
		return "", r.replaceErr
	}
	r.nextID++
	d.ID = fmt.Sprintf("doc-%d", r.nextID)
	r.docs[docKey(d.Owner, d.SessionID, d.Type)] = d
	return d.ID, nil
}

func (r *memDocRepo) Get(_ domain.Context, owner string, sessionID *string, docType string) (domain.Document, error) {
	d, ok := r.docs[docKey(owner, sessionID, docType)]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return d, nil
}

func (r *memDocRepo) Delete(_ domain.Context, owner string, sessionID *string, docType string) error {
	key := docKey(owner, sessionID, docType)
	if _, ok := r.docs[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, key)
	return nil
}

func (r *memDocRepo) DeleteBySession(_ domain.Context, owner, sessionID string) error {
	for k := range r.docs {
		if strings.HasPrefix(k, owner+"|"+sessionID+"|") {
			delete(r.docs, k)
		}
	}
	return nil
}

// memSessionRepo is an in-memory SessionRepository.
type memSessionRepo struct {
	sessions map[string]*domain.InterviewSession
	nextID   int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*domain.InterviewSession{}}
}

func (r *memSessionRepo) Create(_ domain.Context, s domain.InterviewSession) (string, error) {
	r.nextID++
	s.ID = fmt.Sprintf("sess-%d", r.nextID)
	r.sessions[s.ID] = &s
	return s.ID, nil
}

func (r *memSessionRepo) Get(_ domain.Context, owner, id string) (domain.InterviewSession, error) {
	s, ok := r.sessions[id]
	if !ok || s.Owner != owner {
		return domain.InterviewSession{}, domain.ErrNotFound
	}
	return *s, nil
}

func (r *memSessionRepo) Delete(_ domain.Context, owner, id string) error {
	s, ok := r.sessions[id]
	if !ok || s.Owner != owner {
		return domain.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) AppendMessages(_ domain.Context, sessionID string, msgs []domain.Message) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Transcript = append(s.Transcript, msgs...)
	return nil
}

func (r *memSessionRepo) ReplaceQuestions(_ domain.Context, sessionID string, msg domain.Message) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Transcript = []domain.Message{msg}
	s.IsCompleted = false
	s.FinalScore = nil
	s.AverageRelevance = nil
	s.AverageCorrectness = nil
	return nil
}

func (r *memSessionRepo) Complete(_ domain.Context, sessionID string, scores domain.SessionScores) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.IsCompleted = true
	s.FinalScore = scores.FinalScore
	s.AverageRelevance = scores.AverageRelevance
	s.AverageCorrectness = scores.AverageCorrectness
	return nil
}

// memBlobStore records puts and deletes.
type memBlobStore struct {
	blobs  map[string][]byte
	putErr error
	nextID int
}

func newMemBlobStore() *memBlobStore { return &memBlobStore{blobs: map[string][]byte{}} }

func (b *memBlobStore) Put(_ domain.Context, _ string, data []byte) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}
	b.nextID++
	ref := fmt.Sprintf("blob://%d", b.nextID)
	b.blobs[ref] = data
	return ref, nil
}

func (b *memBlobStore) Delete(_ domain.Context, ref string) error {
	delete(b.blobs, ref)
	return nil
}

// fakeExtractor returns canned text.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractPath(_ domain.Context, _, _ string) (string, error) {
	return f.text, f.err
}
