package chunkpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docchunk/kit"
)

// RegisterMCP registers chunking tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerChunkTextTool(srv)
	p.registerConfigTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- chunk_text ---

type chunkTextReq struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

func (p *Pipeline) registerChunkTextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "chunk_text",
		Description: "Split raw text into token-bounded overlapping chunks with metadata.",
		InputSchema: inputSchema(map[string]any{
			"text":   map[string]any{"type": "string", "description": "Text to chunk"},
			"source": map[string]any{"type": "string", "description": "Source document name attributed to the chunks"},
		}, []string{"text"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*chunkTextReq)
		source := r.Source
		if source == "" {
			source = "inline"
		}
		chunks, err := p.ChunkText(r.Text, source)
		if err != nil {
			return nil, err
		}
		return map[string]any{"chunks": chunks, "count": len(chunks)}, nil
	}
	endpoint = kit.Chain(kit.Logging(p.logger, "chunk_text"))(endpoint)

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r chunkTextReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- chunk_config ---

func (p *Pipeline) registerConfigTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "chunk_config",
		Description: "Report the pipeline's effective chunking configuration.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"max_tokens":         p.cfg.MaxTokens,
			"overlap_tokens":     p.cfg.OverlapTokens,
			"table_mode":         string(p.cfg.TableMode),
			"max_rows_per_chunk": p.cfg.MaxRowsPerChunk,
		}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
