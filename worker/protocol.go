// Package worker runs the chunking engine on a dedicated goroutine and exposes it
// through a client that correlates every request with its own response.
package worker

import (
	"encoding/json"

	"github.com/bitrise-io/go-filechunker/chunking"
)

// RequestType tags a request sent to the worker.
type RequestType string

// ResponseType tags a response sent by the worker.
type ResponseType string

const (
	// RequestSingleFile asks the worker to split one source into chunks.
	RequestSingleFile RequestType = "single_file"

	// ResponseDone carries the chunks of a successful request.
	ResponseDone ResponseType = "done"
	// ResponseError carries the failure of a request.
	ResponseError ResponseType = "error"
)

// ProgressComplete is the progress reported with every done response.
const ProgressComplete = 100

// Input is the payload of a single_file request.
type Input struct {
	// File is a display name for the source, used in logs only.
	File      string              `json:"file,omitempty"`
	Source    chunking.ByteSource `json:"-"`
	ChunkSize int64               `json:"chunkSize"`
}

// Request is a message from the client to the worker.
type Request struct {
	ID    string      `json:"id"`
	Type  RequestType `json:"type"`
	Input Input       `json:"input"`
}

// Payload is the body of a response.
// Chunks is set for done responses, Error for error responses.
type Payload struct {
	Progress int               `json:"progress"`
	Chunks   chunking.ChunkSet `json:"chunks"`
	Error    *Failure          `json:"error,omitempty"`
}

// MarshalJSON writes only the error of a failed payload.
// Otherwise progress and chunks are always present, an empty set as [].
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Error != nil {
		return json.Marshal(struct {
			Error *Failure `json:"error"`
		}{Error: p.Error})
	}

	chunks := p.Chunks
	if chunks == nil {
		chunks = chunking.ChunkSet{}
	}
	return json.Marshal(struct {
		Progress int               `json:"progress"`
		Chunks   chunking.ChunkSet `json:"chunks"`
	}{Progress: p.Progress, Chunks: chunks})
}

// Response is a message from the worker to the client.
// ID echoes the ID of the request it answers.
type Response struct {
	ID      string       `json:"id"`
	Type    ResponseType `json:"type"`
	Payload Payload      `json:"payload"`
}

func doneResponse(id string, chunks chunking.ChunkSet) Response {
	return Response{
		ID:   id,
		Type: ResponseDone,
		Payload: Payload{
			Progress: ProgressComplete,
			Chunks:   chunks,
		},
	}
}

func errorResponse(id string, failure *Failure) Response {
	return Response{
		ID:      id,
		Type:    ResponseError,
		Payload: Payload{Error: failure},
	}
}
