// workers/monitor_worker.go
package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/services"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
)

// MonitorWorker drains the game-monitor queue and dispatches each task to the
// matching monitor routine.
type MonitorWorker struct {
	queue   *taskqueue.SQSQueue
	monitor *services.GameMonitor
}

func NewMonitorWorker(queue *taskqueue.SQSQueue, monitor *services.GameMonitor) *MonitorWorker {
	return &MonitorWorker{queue: queue, monitor: monitor}
}

func (w *MonitorWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Monitor Worker (game_monitor_tasks)…")
	go w.run(ctx)
}

func (w *MonitorWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Monitor Worker stopped")
			return
		default:
		}

		msgs, err := w.queue.Receive(ctx, 10, 20*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("❌ Failed to receive monitor tasks: %v", err)
			continue
		}

		for _, msg := range msgs {
			var task taskqueue.MonitorTask
			if err := json.Unmarshal(msg.Body, &task); err != nil {
				log.Fatalf("💀 Unparseable monitor task, halting: %v (body=%s)", err, msg.Body)
			}

			if err := w.dispatch(ctx, task); err != nil {
				log.Printf("❌ Monitor task %s failed for game %s: %v", task.Type, task.GameID, err)
				continue
			}

			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				log.Printf("⚠️ Failed to delete monitor task message: %v", err)
			}
		}
	}
}

func (w *MonitorWorker) dispatch(ctx context.Context, task taskqueue.MonitorTask) error {
	switch task.Type {
	case taskqueue.TaskStartGame:
		return w.monitor.Start(ctx, task.GameID, task.ModificationHash)
	case taskqueue.TaskAutoIncrement:
		return w.monitor.AutoIncrementRound(ctx, task)
	case taskqueue.TaskNewLeader:
		return w.monitor.TrackNewLeader(ctx, task)
	case taskqueue.TaskEpicComeback:
		return w.monitor.DetectComeback(ctx, task)
	default:
		// Unknown task types mean the queue is shared with a newer producer.
		log.Fatalf("💀 Unknown monitor task type %q for game %s, halting", task.Type, task.GameID)
		return nil
	}
}
