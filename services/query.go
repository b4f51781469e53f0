package services

import (
	"context"
	"fmt"

	"docchat/logger"
	"docchat/remote"
)

// Querier performs the remote query call.
type Querier interface {
	Query(ctx context.Context, q remote.QueryRequest) (remote.QueryResponse, error)
}

// Execute issues exactly one remote call for req. It never panics: a
// panicking querier is reported as a failed Result.
func Execute(ctx context.Context, querier Querier, req Request) (res Result) {
	res.RequestID = req.ID

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorw("querier panicked", "request", req.ID, "panic", r)
			res.Response = remote.QueryResponse{}
			res.Err = fmt.Errorf("query panicked: %v", r)
		}
	}()

	resp, err := querier.Query(ctx, remote.QueryRequest{Query: req.Query, Database: req.Database})
	if err != nil {
		res.Err = err
		return res
	}
	res.Response = resp
	return res
}

// Run performs a whole submit cycle on the calling goroutine.
func (d *QueryDispatcher) Run(ctx context.Context, querier Querier, rawText string) Outcome {
	req, outcome := d.Submit(rawText)
	if outcome != OutcomeDispatched {
		return outcome
	}

	d.Resolve(Execute(ctx, querier, req))
	return outcome
}
