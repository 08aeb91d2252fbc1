// internal/api/service.go
package api

import "gitpanel/shared/types"

//go:generate mockgen -destination=service_mock.go -package=$GOPACKAGE gitpanel/internal/api Service

// Service is the set of git operations the handlers expose.
type Service interface {
	Status(localPath string) (*types.StatusResponse, error)
	Add(localPath string) (*types.AddResponse, error)
	Commit(localPath, message string) (*types.CommitResponse, error)
	CommitChanges(localPath, message string) (*types.CommitResponse, error)
	History(localPath, filePath string) (*types.HistoryResponse, error)
}
