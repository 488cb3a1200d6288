package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/ipc"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/calc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/conf"
	"github.com/Fergus4506/olca-ipc-container/pkg/version"
)

func (s *Service) initMCPServer() {
	s.mcpServer = server.NewMCPServer(conf.AppName, version.Version)
	s.mcpServer.AddTool(CalculateTool, s.handleMCPCalculate)
	s.mcpServer.AddTool(GetEntityTool, s.handleMCPGetEntity)
	s.mcpSSEServer = server.NewSSEServer(s.mcpServer)
	s.mcpStreamableServer = server.NewStreamableHTTPServer(s.mcpServer)
}

var CalculateTool = mcp.NewTool(
	"calculate_gwp",
	mcp.WithDescription(`Run the food waste product system in openLCA with the given parameters and return its global warming potential impacts as CSV lines "category,value,unit".`),
	mcp.WithNumber("distance", mcp.Description("Transport distance."), mcp.Required()),
	mcp.WithNumber("factor", mcp.Description("Emission factor."), mcp.Required()),
	mcp.WithNumber("load", mcp.Description("Vehicle load."), mcp.Required()),
	mcp.WithNumber("amount", mcp.Description("Reference amount of the product system."), mcp.Required()),
)

var GetEntityTool = mcp.NewTool(
	"get_entity",
	mcp.WithDescription(`Fetch one entity from the openLCA database by its @type (for example Project, ProductSystem, Flow) and @id, and return it as JSON.`),
	mcp.WithString("type", mcp.Description("The openLCA @type of the entity."), mcp.Required()),
	mcp.WithString("id", mcp.Description("The @id (UUID) of the entity."), mcp.Required()),
)

func (s *Service) handleMCPCalculate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req calc.Input
	if err := request.BindArguments(&req); err != nil {
		log.Error().Err(err).Interface("request", request.GetRawArguments()).Msg("Failed to bind arguments")
		return errors.ErrMCPTool(errors.InvalidArg("arguments")), nil
	}

	impacts, err := s.calc.Calculate(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate")
		return errors.ErrMCPTool(err), nil
	}

	buf := &bytes.Buffer{}
	buf.WriteString("category,value,unit\n")
	for _, impact := range impacts {
		buf.WriteString(fmt.Sprintf("%s,%g,%s\n", impact.Category, impact.Value, impact.Unit))
	}
	return mcp.NewToolResultText(buf.String()), nil
}

type GetEntityRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (s *Service) handleMCPGetEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req GetEntityRequest
	if err := request.BindArguments(&req); err != nil {
		log.Error().Err(err).Interface("request", request.GetRawArguments()).Msg("Failed to bind arguments")
		return errors.ErrMCPTool(errors.InvalidArg("arguments")), nil
	}
	q := conf.Query{Type: req.Type, ID: req.ID}
	if err := q.Validate(); err != nil {
		return errors.ErrMCPTool(err), nil
	}

	call := ipc.Call{
		Label:   req.Type,
		Request: jsonrpc.NewRequest(1, ipc.MethodDataGet, map[string]any{"@type": req.Type, "@id": req.ID}),
	}
	outcome := s.invoker.Invoke(ctx, call)[0]
	if outcome.Status != ipc.StatusSuccess {
		return errors.ErrMCPTool(outcome.Err), nil
	}
	if !outcome.HasData() {
		return errors.ErrMCPTool(errors.EntityNotFound(req.Type, req.ID)), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, outcome.Response.Result, "", "  "); err != nil {
		return errors.ErrMCPTool(errors.InvalidEnvelope(err)), nil
	}
	return mcp.NewToolResultText(out.String()), nil
}
