// workers/question_worker.go
package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/JonathanFoo0523/extreme-startup-scaled/services"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
)

// QuestionWorker drains the administer-question queue and hands each task to
// the quiz master. Concurrency is horizontal: run more worker processes, not
// more goroutines per message batch.
type QuestionWorker struct {
	queue      *taskqueue.SQSQueue
	quizMaster *services.QuizMaster
}

func NewQuestionWorker(queue *taskqueue.SQSQueue, qm *services.QuizMaster) *QuestionWorker {
	return &QuestionWorker{queue: queue, quizMaster: qm}
}

func (w *QuestionWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Question Worker (administer_question_tasks)…")
	go w.run(ctx)
}

func (w *QuestionWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Question Worker stopped")
			return
		default:
		}

		msgs, err := w.queue.Receive(ctx, 10, 20*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("❌ Failed to receive question tasks: %v", err)
			continue
		}

		for _, msg := range msgs {
			var task taskqueue.AdministerQuestionTask
			if err := json.Unmarshal(msg.Body, &task); err != nil {
				// A message we cannot parse means a deployment mismatch
				// between producer and consumer. Keep running and it will
				// silently strand player chains, so stop hard instead.
				log.Fatalf("💀 Unparseable question task, halting: %v (body=%s)", err, msg.Body)
			}

			if err := w.quizMaster.AdministerQuestion(ctx, task); err != nil {
				// Leave the message in flight so SQS redelivers it after the
				// visibility timeout.
				log.Printf("❌ Question task failed for player %s in game %s: %v", task.PlayerID, task.GameID, err)
				continue
			}

			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				log.Printf("⚠️ Failed to delete question task message: %v", err)
			}
		}
	}
}
