package socket

import "time"

// HealthResponse answers the Health op.
type HealthResponse struct {
	Version           string `json:"version"`
	ActiveContainers  int    `json:"active_containers"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
}

// ListContainersRequest narrows the listing. An empty Type does not filter
// by type. Without Status, only the containers the supervisor is currently
// running are listed, and a zero PlayerID does not filter by player. With
// Status, the database is queried for containers in that status owned by
// PlayerID; a zero PlayerID there does not list every player's containers.
type ListContainersRequest struct {
	PlayerID int    `json:"player_id,omitempty"`
	Type     string `json:"type,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ContainerSummary is the projection returned by ListContainers and as the
// element type embedded in GetContainer.
type ContainerSummary struct {
	ID                string                 `json:"id"`
	Type              string                 `json:"type"`
	PlayerID          int                    `json:"player_id"`
	Status            string                 `json:"status"`
	CurrentIteration  int                    `json:"current_iteration"`
	MaxIterations     int                    `json:"max_iterations"`
	RestartCount      int                    `json:"restart_count"`
	MaxRestarts       int                    `json:"max_restarts"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	StartedAt         *time.Time             `json:"started_at,omitempty"`
	StoppedAt         *time.Time             `json:"stopped_at,omitempty"`
	LastError         string                 `json:"last_error,omitempty"`
}

type ListContainersResponse struct {
	Containers []ContainerSummary `json:"containers"`
}

type GetContainerRequest struct {
	ContainerID string `json:"container_id"`
	PlayerID    int    `json:"player_id"`
}

type GetContainerResponse struct {
	Container ContainerSummary `json:"container"`
}

type StopContainerRequest struct {
	ContainerID string `json:"container_id"`
	PlayerID    int    `json:"player_id"`
}

type StopContainerResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

type GetContainerLogsRequest struct {
	ContainerID string     `json:"container_id"`
	PlayerID    int        `json:"player_id"`
	Level       string     `json:"level,omitempty"`
	Since       *time.Time `json:"since,omitempty"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

type LogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type GetContainerLogsResponse struct {
	Entries []LogEntry `json:"entries"`
}

// RegisterContainerRequest backs every Register<T>Container op: the client
// names the container type and supplies typed metadata as an opaque JSON
// object, which the matching workflow Step interprets.
type RegisterContainerRequest struct {
	Type          string                 `json:"type"`
	PlayerID      int                    `json:"player_id"`
	MaxIterations int                    `json:"max_iterations"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type RegisterContainerResponse struct {
	ContainerID string `json:"container_id"`
}
