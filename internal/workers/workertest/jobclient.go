// Package workertest records the commands a worker handler sends to the broker.
package workertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// JobClient implements worker.JobClient against an in-memory gateway.
type JobClient struct {
	gateway *gateway
}

func NewJobClient() *JobClient {
	return &JobClient{gateway: &gateway{}}
}

// Job builds an activated job carrying variables.
func Job(key int64, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               "test",
		ProcessInstanceKey: key * 10,
		Variables:          variables,
		Retries:            3,
	}}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// Completed returns the completion requests received so far.
func (c *JobClient) Completed() []*pb.CompleteJobRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.CompleteJobRequest{}, c.gateway.completed...)
}

func (c *JobClient) Failed() []*pb.FailJobRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.FailJobRequest{}, c.gateway.failed...)
}

func (c *JobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.ThrowErrorRequest{}, c.gateway.thrown...)
}

// CompletedVariables decodes the variables of the only completion request into out.
func (c *JobClient) CompletedVariables(out interface{}) error {
	completed := c.Completed()
	if len(completed) != 1 {
		return fmt.Errorf("expected one completed job, got %d", len(completed))
	}
	return json.Unmarshal([]byte(completed[0].Variables), out)
}

// gateway answers the three job RPCs; every other RPC panics through the nil embed.
type gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *gateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}
