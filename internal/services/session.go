package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/crypto-identifier/internal/models"
)

var ErrNoFileSelected = errors.New("no ciphertext file selected")

// AnalysisSession owns one user's file selection and the outcome of their
// latest submission.
//
// Submissions are numbered in the order they begin. Only the newest one may
// settle the session; a response that arrives for an older submission is
// dropped, and beginning a new submission cancels the previous request.
type AnalysisSession interface {
	SelectFile(file *models.CiphertextFile)
	SelectedFile() *models.CiphertextFile
	Submit(ctx context.Context) models.ViewModel
	Begin() (*Submission, bool)
	Run(ctx context.Context, sub *Submission) models.ViewModel
	Abort(sub *Submission, cause error)
	ViewModel() models.ViewModel
	Close()
}

// Submission is a ticket for one outbound classifier request.
type Submission struct {
	ID       uuid.UUID
	Seq      uint64
	FileName string
	content  []byte
	started  bool
}

type analysisSession struct {
	classifier   ClassifierService
	storage      StorageService
	singleFlight bool

	mu           sync.Mutex
	file         *models.CiphertextFile
	status       models.AnalysisStatus
	errorMessage string
	response     *models.ClassifierResponse
	seq          uint64
	cancel       context.CancelFunc
}

// NewAnalysisSession creates an idle session. With singleFlight set, a
// submission attempted while another is in flight is ignored instead of
// superseding it.
func NewAnalysisSession(classifier ClassifierService, storage StorageService, singleFlight bool) AnalysisSession {
	return &analysisSession{
		classifier:   classifier,
		storage:      storage,
		singleFlight: singleFlight,
		status:       models.StatusIdle,
	}
}

// SelectFile replaces the selected file. A previous result stays visible
// until the next submission.
func (s *analysisSession) SelectFile(file *models.CiphertextFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil && (file == nil || s.file.ID != file.ID) {
		if err := s.storage.DeleteFile(s.file); err != nil {
			log.Printf("⚠️  Failed to remove replaced ciphertext %s: %v\n", s.file.ID, err)
		}
	}
	s.file = file
}

func (s *analysisSession) SelectedFile() *models.CiphertextFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Submit begins a submission and blocks until it settles.
func (s *analysisSession) Submit(ctx context.Context) models.ViewModel {
	sub, ok := s.Begin()
	if !ok {
		return s.ViewModel()
	}
	return s.Run(ctx, sub)
}

// Begin validates the selection and moves the session to Submitting. It
// returns false when there is nothing to run: the selection was missing or
// unreadable (the session is now Failed) or single-flight mode ignored the call.
func (s *analysisSession) Begin() (*Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		log.Printf("⚠️  Submission rejected: %v\n", ErrNoFileSelected)
		s.supersede()
		s.fail(models.MessageNoFile)
		return nil, false
	}

	if s.singleFlight && s.status == models.StatusSubmitting {
		return nil, false
	}

	s.supersede()

	content, err := s.storage.ReadFile(s.file)
	if err != nil {
		log.Printf("❌ Failed to read selected ciphertext %s: %v\n", s.file.Name, err)
		s.fail(models.MessageBackendFailure)
		return nil, false
	}

	s.status = models.StatusSubmitting
	s.errorMessage = ""
	s.response = nil

	return &Submission{
		ID:       uuid.New(),
		Seq:      s.seq,
		FileName: s.file.Name,
		content:  content,
	}, true
}

// Run performs the classifier call for sub and settles the session if sub is
// still the newest submission.
func (s *analysisSession) Run(ctx context.Context, sub *Submission) models.ViewModel {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if sub.started || sub.Seq != s.seq {
		s.mu.Unlock()
		log.Printf("⏭️  Skipping submission %s (seq %d)\n", sub.ID, sub.Seq)
		return s.ViewModel()
	}
	sub.started = true
	s.cancel = cancel
	s.mu.Unlock()

	log.Printf("📤 Submitting %s (%d bytes, seq %d)\n", sub.FileName, len(sub.content), sub.Seq)
	resp, err := s.classifier.Predict(ctx, sub.FileName, sub.content)
	s.settle(sub, resp, err)

	return s.ViewModel()
}

// Abort settles sub as a transport failure. Used when a submission could not
// be dispatched.
func (s *analysisSession) Abort(sub *Submission, cause error) {
	if cause == nil {
		cause = ErrWorkerStopped
	}
	s.settle(sub, nil, cause)
}

func (s *analysisSession) ViewModel() models.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm := models.ViewModel{
		Status:       s.status,
		ErrorMessage: s.errorMessage,
	}
	if s.file != nil {
		vm.FileName = s.file.Name
	}
	if s.response != nil {
		verdict := InterpretResult(s.response)
		vm.Verdict = &verdict
	}
	return vm
}

// Close cancels any in-flight request and releases the selected file.
func (s *analysisSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersede()
	if err := s.storage.DeleteFile(s.file); err != nil {
		log.Printf("⚠️  Failed to remove ciphertext on close: %v\n", err)
	}
	s.file = nil
}

func (s *analysisSession) settle(sub *Submission, resp *models.ClassifierResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.Seq != s.seq {
		log.Printf("🗑️  Discarding stale response for submission %s (seq %d, current %d)\n", sub.ID, sub.Seq, s.seq)
		return
	}
	s.cancel = nil
	sub.started = true

	if err != nil {
		log.Printf("❌ Submission %s failed: %v\n", sub.ID, err)
		s.fail(models.MessageBackendFailure)
		return
	}

	s.status = models.StatusSucceeded
	s.errorMessage = ""
	s.response = resp
	log.Printf("✅ Submission %s settled\n", sub.ID)
}

// supersede invalidates every outstanding submission. Caller holds s.mu.
func (s *analysisSession) supersede() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// fail moves to Failed. Caller holds s.mu.
func (s *analysisSession) fail(message string) {
	s.status = models.StatusFailed
	s.errorMessage = message
	s.response = nil
}
