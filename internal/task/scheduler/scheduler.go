package scheduler

import (
	"context"
	"log"
	"reliance-backend/internal/task/repository"
	"sync"
	"time"
)

// OverdueScheduler periodically marks open tasks whose deadline has passed as MISSED
type OverdueScheduler struct {
	taskRepo repository.TaskRepository
	interval time.Duration
	now      func() time.Time
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewOverdueScheduler creates a new scheduler
func NewOverdueScheduler(taskRepo repository.TaskRepository, interval time.Duration) *OverdueScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &OverdueScheduler{
		taskRepo: taskRepo,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *OverdueScheduler) Start() {
	log.Printf("[TaskScheduler] Starting overdue task sweeper (interval: %s)", s.interval)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.Sweep(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stopChan:
				log.Println("[TaskScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for an in-flight sweep to finish
func (s *OverdueScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

// Sweep marks every overdue task as missed and returns how many were changed
func (s *OverdueScheduler) Sweep(ctx context.Context) int {
	tasks, err := s.taskRepo.FindOverdue(ctx, s.now())
	if err != nil {
		log.Printf("[TaskScheduler] Error finding overdue tasks: %v", err)
		return 0
	}
	if len(tasks) == 0 {
		return 0
	}

	marked := 0
	for _, task := range tasks {
		ok, err := s.taskRepo.MarkMissed(ctx, task.ID)
		if err != nil {
			log.Printf("[TaskScheduler] Error marking task %s as missed: %v", task.ID, err)
			continue
		}
		if ok {
			marked++
		}
	}
	log.Printf("[TaskScheduler] Marked %d of %d overdue tasks as missed", marked, len(tasks))
	return marked
}
