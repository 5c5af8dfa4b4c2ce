// Package call orchestrates outbound reservation calls: it rewrites the
// voice agent's script for one order, submits a batch call for the order's
// phone number, and records the outcome in the task registry and on the
// order itself.
package call

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/model"
	"github.com/tablewave/reserve-server/internal/store"
	"github.com/tablewave/reserve-server/internal/task"
	"github.com/tablewave/reserve-server/pkg/elevenlabs"
)

// job carries one orchestration's inputs. Owned exclusively by the goroutine
// that runs it.
type job struct {
	taskID       string
	orderID      int64
	firstMessage string
	systemPrompt string
}

// Orchestrator launches and tracks call attempts. Callers never wait on an
// attempt; they poll the registry with the returned task ID.
type Orchestrator struct {
	registry *task.Registry
	store    store.Store
	agent    elevenlabs.Client

	agentID       string
	phoneNumberID string
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(registry *task.Registry, st store.Store, agent elevenlabs.Client, agentID, phoneNumberID string) *Orchestrator {
	return &Orchestrator{
		registry:      registry,
		store:         st,
		agent:         agent,
		agentID:       agentID,
		phoneNumberID: phoneNumberID,
	}
}

// Start registers a pending task, launches the call attempt in the
// background, and returns the task ID immediately. The registry write
// happens before return, so a status poll with the returned ID never
// reports not_found.
func (o *Orchestrator) Start(orderID int64, firstMessage, systemPrompt string) string {
	taskID := uuid.NewString()
	o.registry.Create(taskID)

	go o.run(job{
		taskID:       taskID,
		orderID:      orderID,
		firstMessage: firstMessage,
		systemPrompt: systemPrompt,
	})

	return taskID
}

// run executes one call attempt to completion. There is no cancellation and
// no retry: the attempt either lands as success or as a recorded failure.
func (o *Orchestrator) run(j job) {
	ctx := context.Background()

	// The order may exist but be unreachable, so no status write on either
	// lookup failure path.
	order, err := o.store.GetOrder(ctx, j.orderID)
	if err != nil {
		zap.L().Warn("call: order lookup failed",
			zap.String("task_id", j.taskID),
			zap.Int64("order_id", j.orderID),
			zap.Error(err))
		if errors.Is(err, store.ErrNotFound) {
			o.registry.Set(j.taskID, task.FailStatus("order not found"))
		} else {
			o.registry.Set(j.taskID, task.FailStatus(err.Error()))
		}
		return
	}

	if err := o.agent.UpdateAgent(ctx, o.agentID, elevenlabs.UpdateAgentRequest{
		FirstMessage: j.firstMessage,
		SystemPrompt: j.systemPrompt,
	}); err != nil {
		o.fail(ctx, j, err)
		return
	}

	resp, err := o.agent.SubmitBatchCall(ctx, elevenlabs.BatchCallRequest{
		CallName:           fmt.Sprintf("order_%d", order.ID),
		AgentID:            o.agentID,
		AgentPhoneNumberID: o.phoneNumberID,
		Recipients:         []elevenlabs.Recipient{{PhoneNumber: order.Phone}},
	})
	if err != nil {
		o.fail(ctx, j, err)
		return
	}

	if err := o.store.UpdateOrderStatus(ctx, order.ID, model.OrderStatusSuccess); err != nil {
		zap.L().Error("call: record order success failed",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	o.registry.Set(j.taskID, task.StatusSuccess)

	zap.L().Info("call: batch call submitted",
		zap.String("task_id", j.taskID),
		zap.Int64("order_id", order.ID),
		zap.String("batch_id", resp.ID))
}

// fail marks both the order and the task as failed. The order exists at this
// point; a status-write failure is logged but cannot change the outcome.
func (o *Orchestrator) fail(ctx context.Context, j job, cause error) {
	zap.L().Warn("call: attempt failed",
		zap.String("task_id", j.taskID),
		zap.Int64("order_id", j.orderID),
		zap.Error(cause))

	if err := o.store.UpdateOrderStatus(ctx, j.orderID, model.OrderStatusFail); err != nil {
		zap.L().Error("call: record order failure failed",
			zap.Int64("order_id", j.orderID),
			zap.Error(err))
	}
	o.registry.Set(j.taskID, task.FailStatus(cause.Error()))
}
