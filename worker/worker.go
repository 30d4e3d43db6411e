// Package worker runs speech jobs off the interaction loop so the screen
// never blocks on audio playback.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/interfaces"
)

// speakTimeout bounds a single playback job.
const speakTimeout = 60 * time.Second

// SpeechJob holds all the necessary data for a single text-to-speech task.
type SpeechJob struct {
	Text  string
	Synth interfaces.Synthesizer
	Log   *logrus.Entry
}

// Pool manages a fixed set of workers and a queue of speech jobs.
type Pool struct {
	JobQueue   chan SpeechJob
	MaxWorkers int
}

// New creates a new Pool.
func New(maxWorkers, queueSize int) *Pool {
	return &Pool{
		JobQueue:   make(chan SpeechJob, queueSize),
		MaxWorkers: maxWorkers,
	}
}

// Start creates and starts the worker goroutines.
func (p *Pool) Start() {
	for i := 1; i <= p.MaxWorkers; i++ {
		go p.worker()
	}
}

// Submit queues a job. If the queue is full the job is dropped: narration
// audio is best effort and must never stall the loop.
func (p *Pool) Submit(job SpeechJob) bool {
	select {
	case p.JobQueue <- job:
		return true
	default:
		if job.Log != nil {
			job.Log.Warn("speech queue full, dropping narration")
		}
		return false
	}
}

// Stop closes the queue; workers exit after draining it.
func (p *Pool) Stop() {
	close(p.JobQueue)
}

func (p *Pool) worker() {
	for job := range p.JobQueue {
		processSpeech(job)
	}
}

func processSpeech(job SpeechJob) {
	if job.Synth == nil || job.Text == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
	defer cancel()

	if err := job.Synth.Speak(ctx, job.Text); err != nil && job.Log != nil {
		job.Log.WithError(err).Error("text-to-speech playback failed")
	}
}
