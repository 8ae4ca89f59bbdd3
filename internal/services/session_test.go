package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/crypto-identifier/internal/models"
)

func rc4Response() *models.ClassifierResponse {
	return &models.ClassifierResponse{
		PredictedAlgorithm: strPtr("RC4"),
		Confidence:         floatPtr(0.91),
		IsUncertain:        boolPtr(false),
		TopPredictions: []models.TopPrediction{
			{Algorithm: "RC4", Confidence: 0.91},
			{Algorithm: "ChaCha20", Confidence: 0.06},
		},
	}
}

func aesResponse() *models.ClassifierResponse {
	return &models.ClassifierResponse{
		PredictedAlgorithm: strPtr("AES"),
		Confidence:         floatPtr(0.77),
		IsUncertain:        boolPtr(false),
	}
}

func newTestStorage(t *testing.T) StorageService {
	t.Helper()
	store := NewStorageService(t.TempDir(), 1<<20)
	require.NoError(t, store.EnsureUploadDir())
	return store
}

func uploadFile(t *testing.T, store StorageService, name string, content string) *models.CiphertextFile {
	t.Helper()
	file, err := store.SaveUpload(multipartFile(t, name, []byte(content)))
	require.NoError(t, err)
	return file
}

func TestAnalysisSession_StartsIdle(t *testing.T) {
	session := NewAnalysisSession(new(MockClassifier), newTestStorage(t), false)

	vm := session.ViewModel()

	assert.Equal(t, models.StatusIdle, vm.Status)
	assert.Empty(t, vm.ErrorMessage)
	assert.Nil(t, vm.Verdict)
	assert.Empty(t, vm.FileName)
}

func TestAnalysisSession_SubmitWithoutFile(t *testing.T) {
	classifier := new(MockClassifier)
	session := NewAnalysisSession(classifier, newTestStorage(t), false)

	vm := session.Submit(context.Background())

	assert.Equal(t, models.StatusFailed, vm.Status)
	assert.Equal(t, models.MessageNoFile, vm.ErrorMessage)
	assert.Nil(t, vm.Verdict)
	classifier.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalysisSession_SubmitWithoutFileAfterSuccess(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", []byte("aaaa")).Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))
	require.Equal(t, models.StatusSucceeded, session.Submit(context.Background()).Status)

	session.SelectFile(nil)
	vm := session.Submit(context.Background())

	assert.Equal(t, models.StatusFailed, vm.Status)
	assert.Equal(t, models.MessageNoFile, vm.ErrorMessage)
	assert.Nil(t, vm.Verdict)
	classifier.AssertNumberOfCalls(t, "Predict", 1)
}

func TestAnalysisSession_SubmitSuccess(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "sample.bin", []byte("ciphertext")).Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "sample.bin", "ciphertext"))

	vm := session.Submit(context.Background())

	assert.Equal(t, models.StatusSucceeded, vm.Status)
	assert.Empty(t, vm.ErrorMessage)
	assert.Equal(t, "sample.bin", vm.FileName)
	require.NotNil(t, vm.Verdict)
	assert.Equal(t, "RC4", vm.Verdict.Label)
	assert.Equal(t, 91, vm.Verdict.ConfidencePercent)
	assert.Len(t, vm.Verdict.Alternatives, 2)
	classifier.AssertExpectations(t)
}

func TestAnalysisSession_SubmitFailureThenRetry(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(aesResponse(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	vm := session.Submit(context.Background())
	assert.Equal(t, models.StatusFailed, vm.Status)
	assert.Equal(t, models.MessageBackendFailure, vm.ErrorMessage)
	assert.Nil(t, vm.Verdict)

	vm = session.Submit(context.Background())
	assert.Equal(t, models.StatusSucceeded, vm.Status)
	assert.Empty(t, vm.ErrorMessage)
	require.NotNil(t, vm.Verdict)
	assert.Equal(t, "AES", vm.Verdict.Label)
}

func TestAnalysisSession_FailureUniformity(t *testing.T) {
	slow := newFakeClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		jsonHandler(http.StatusOK, `{"predicted_algorithm":"AES","confidence":0.9}`)(w, r)
	})
	broken := newFakeClassifier(t, jsonHandler(http.StatusInternalServerError, `{"detail":"boom"}`))

	store := newTestStorage(t)
	file := uploadFile(t, store, "a.bin", "aaaa")

	timeoutSession := NewAnalysisSession(NewClassifierService(slow.URL, slow.URL+"/predict", 50*time.Millisecond), store, false)
	timeoutSession.SelectFile(file)
	timedOut := timeoutSession.Submit(context.Background())

	errorSession := NewAnalysisSession(NewClassifierService(broken.URL, broken.URL+"/predict", time.Second), store, false)
	errorSession.SelectFile(file)
	serverError := errorSession.Submit(context.Background())

	assert.Equal(t, models.StatusFailed, timedOut.Status)
	assert.Equal(t, models.StatusFailed, serverError.Status)
	assert.Equal(t, models.MessageBackendFailure, timedOut.ErrorMessage)
	assert.Equal(t, timedOut.ErrorMessage, serverError.ErrorMessage)
}

func TestAnalysisSession_SubmittingSnapshot(t *testing.T) {
	store := newTestStorage(t)
	started := make(chan struct{})
	release := make(chan struct{})

	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	done := make(chan models.ViewModel, 1)
	go func() { done <- session.Submit(context.Background()) }()

	<-started
	vm := session.ViewModel()
	assert.Equal(t, models.StatusSubmitting, vm.Status)
	assert.True(t, vm.IsSubmitting())
	assert.Empty(t, vm.ErrorMessage)
	assert.Nil(t, vm.Verdict)

	close(release)
	final := <-done
	assert.Equal(t, models.StatusSucceeded, final.Status)
	require.NotNil(t, final.Verdict)
}

func TestAnalysisSession_StaleResponseIsDiscarded(t *testing.T) {
	store := newTestStorage(t)
	startedA := make(chan struct{})
	releaseA := make(chan struct{})

	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).
		Run(func(mock.Arguments) {
			close(startedA)
			<-releaseA
		}).
		Return(rc4Response(), nil).Once()
	classifier.On("Predict", mock.Anything, "b.bin", mock.Anything).Return(aesResponse(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		session.Submit(context.Background())
	}()
	<-startedA

	session.SelectFile(uploadFile(t, store, "b.bin", "bbbb"))
	vmB := session.Submit(context.Background())
	require.Equal(t, models.StatusSucceeded, vmB.Status)
	require.Equal(t, "AES", vmB.Verdict.Label)

	// A answers after B has settled.
	close(releaseA)
	wg.Wait()

	final := session.ViewModel()
	assert.Equal(t, models.StatusSucceeded, final.Status)
	require.NotNil(t, final.Verdict)
	assert.Equal(t, "AES", final.Verdict.Label)
	classifier.AssertExpectations(t)
}

func TestAnalysisSession_NewSubmissionCancelsPrevious(t *testing.T) {
	store := newTestStorage(t)
	cancelled := make(chan error, 1)
	startedA := make(chan struct{})

	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(startedA)
			<-ctx.Done()
			cancelled <- ctx.Err()
		}).
		Return(nil, context.Canceled).Once()
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	go session.Submit(context.Background())
	<-startedA

	vm := session.Submit(context.Background())

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	assert.Equal(t, models.StatusSucceeded, vm.Status)
	assert.Equal(t, models.StatusSucceeded, session.ViewModel().Status)
}

func TestAnalysisSession_SingleFlightIgnoresReentry(t *testing.T) {
	store := newTestStorage(t)
	started := make(chan struct{})
	release := make(chan struct{})

	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, true)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	done := make(chan models.ViewModel, 1)
	go func() { done <- session.Submit(context.Background()) }()
	<-started

	sub, ok := session.Begin()
	assert.False(t, ok)
	assert.Nil(t, sub)
	assert.Equal(t, models.StatusSubmitting, session.ViewModel().Status)

	close(release)
	assert.Equal(t, models.StatusSucceeded, (<-done).Status)
	classifier.AssertNumberOfCalls(t, "Predict", 1)
}

func TestAnalysisSession_SelectFileKeepsStaleResult(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	first := uploadFile(t, store, "a.bin", "aaaa")
	session.SelectFile(first)
	session.Submit(context.Background())

	session.SelectFile(uploadFile(t, store, "b.bin", "bbbb"))
	vm := session.ViewModel()

	assert.Equal(t, models.StatusSucceeded, vm.Status)
	assert.Equal(t, "b.bin", vm.FileName)
	require.NotNil(t, vm.Verdict)
	assert.Equal(t, "RC4", vm.Verdict.Label)

	// The replaced upload is released from disk.
	_, err := os.Stat(first.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestAnalysisSession_ViewModelIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(rc4Response(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))
	session.Submit(context.Background())

	assert.Equal(t, session.ViewModel(), session.ViewModel())
}

func TestAnalysisSession_UnreadableFile(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)

	session := NewAnalysisSession(classifier, store, false)
	file := uploadFile(t, store, "a.bin", "aaaa")
	require.NoError(t, os.Remove(file.Path))
	session.SelectFile(file)

	vm := session.Submit(context.Background())

	assert.Equal(t, models.StatusFailed, vm.Status)
	assert.Equal(t, models.MessageBackendFailure, vm.ErrorMessage)
	classifier.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalysisSession_BeginRunAbort(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	sub, ok := session.Begin()
	require.True(t, ok)
	assert.Equal(t, "a.bin", sub.FileName)
	assert.Equal(t, models.StatusSubmitting, session.ViewModel().Status)

	session.Abort(sub, ErrWorkerStopped)
	vm := session.ViewModel()
	assert.Equal(t, models.StatusFailed, vm.Status)
	assert.Equal(t, models.MessageBackendFailure, vm.ErrorMessage)

	// An aborted ticket never reaches the classifier.
	session.Run(context.Background(), sub)
	classifier.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalysisSession_RunSupersededTicket(t *testing.T) {
	store := newTestStorage(t)
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.Anything, "a.bin", mock.Anything).Return(aesResponse(), nil).Once()

	session := NewAnalysisSession(classifier, store, false)
	session.SelectFile(uploadFile(t, store, "a.bin", "aaaa"))

	first, ok := session.Begin()
	require.True(t, ok)
	second, ok := session.Begin()
	require.True(t, ok)
	assert.Greater(t, second.Seq, first.Seq)

	session.Run(context.Background(), first)
	assert.Equal(t, models.StatusSubmitting, session.ViewModel().Status)

	vm := session.Run(context.Background(), second)
	assert.Equal(t, models.StatusSucceeded, vm.Status)
	classifier.AssertNumberOfCalls(t, "Predict", 1)
}

func TestAnalysisSession_CloseReleasesFile(t *testing.T) {
	store := newTestStorage(t)
	session := NewAnalysisSession(new(MockClassifier), store, false)
	file := uploadFile(t, store, "a.bin", "aaaa")
	session.SelectFile(file)

	session.Close()

	assert.Nil(t, session.SelectedFile())
	_, err := os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}
