package docpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docchunk/chunkpipe"
	"github.com/hazyhaar/docchunk/kit"
)

// RegisterMCP registers document conversion tools on an MCP server.
// The chunker handles the chunk_file tool's second stage.
func (p *Pipeline) RegisterMCP(srv *mcp.Server, chunker *chunkpipe.Pipeline) {
	p.registerConvertTool(srv)
	p.registerChunkFileTool(srv, chunker)
	p.registerFormatsTool(srv)
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

// --- docpipe_convert ---

type convertReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerConvertTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_convert",
		Description: "Convert a document file into classified elements (text, headings, tables, pictures).",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path to the document file"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*convertReq)
		doc, err := p.Convert(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"source":   doc.Source,
			"format":   string(doc.Format),
			"elements": doc.Elements,
			"count":    len(doc.Elements),
		}, nil
	}
	endpoint = kit.Chain(kit.Logging(p.logger, "docpipe_convert"))(endpoint)

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r convertReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- chunk_file ---

type chunkFileReq struct {
	Path string `json:"path"`
}

func (p *Pipeline) registerChunkFileTool(srv *mcp.Server, chunker *chunkpipe.Pipeline) {
	tool := &mcp.Tool{
		Name:        "chunk_file",
		Description: "Convert a document file and split it into token-bounded chunks with metadata.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path to the document file"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*chunkFileReq)
		chunks, err := p.ChunkFile(ctx, r.Path, chunker)
		if err != nil {
			return nil, err
		}
		return map[string]any{"chunks": chunks, "count": len(chunks)}, nil
	}
	endpoint = kit.Chain(kit.Logging(p.logger, "chunk_file"))(endpoint)

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r chunkFileReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- docpipe_formats ---

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_formats",
		Description: "List the document formats the converter supports.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"formats": SupportedFormats()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
