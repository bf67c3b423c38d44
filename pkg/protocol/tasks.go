package protocol

import "encoding/json"

// TaskStatus is the lifecycle state of an augmented-async operation
// started by a tasks/-capable method.
type TaskStatus string

const (
	TaskWorking       TaskStatus = "working"
	TaskInputRequired TaskStatus = "input_required"
	TaskCompleted     TaskStatus = "completed"
	TaskFailed        TaskStatus = "failed"
	TaskCancelled     TaskStatus = "cancelled"
)

// Task mirrors a running or finished operation. It carries no payload; a
// completed task's result is fetched separately through tasks/result
// (TaskResult).
type Task struct {
	TaskID    string          `json:"taskId"`
	Status    TaskStatus      `json:"status"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
	StatusMsg string          `json:"statusMessage,omitempty"`
	Meta      *Meta           `json:"_meta,omitempty"`
}

type ListTasksParams struct {
	Cursor string `json:"cursor,omitempty"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *ListTasksParams) GetMeta() *Meta { return p.Meta }

type ListTasksResult struct {
	Tasks      []Task `json:"tasks"`
	NextCursor string `json:"nextCursor,omitempty"`
	Meta       *Meta  `json:"_meta,omitempty"`
}

func (r *ListTasksResult) GetMeta() *Meta { return r.Meta }

type GetTaskParams struct {
	TaskID string `json:"taskId"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *GetTaskParams) GetMeta() *Meta { return p.Meta }

type CancelTaskParams struct {
	TaskID string `json:"taskId"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *CancelTaskParams) GetMeta() *Meta { return p.Meta }

// GetTaskResultParams retrieves the method-specific result of a completed
// task, e.g. the CallToolResult for a task started via tools/call.
type GetTaskResultParams struct {
	TaskID string `json:"taskId"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *GetTaskResultParams) GetMeta() *Meta { return p.Meta }

// TaskResult wraps the raw, method-specific payload so the session core
// doesn't need to know which method created the task.
type TaskResult struct {
	Result json.RawMessage `json:"result"`
	Meta   *Meta           `json:"_meta,omitempty"`
}

func (r *TaskResult) GetMeta() *Meta { return r.Meta }
