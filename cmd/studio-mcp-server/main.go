package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"content-studio/internal/blog"
	"content-studio/internal/config"
	"content-studio/internal/llm"
	"content-studio/internal/storage"
	"content-studio/internal/studio"
)

type AnalyzeContentParams struct {
	Content string `json:"content" mcp:"the marketing copy or draft to analyze"`
}

type GetAnalysisHistoryParams struct {
	Limit int `json:"limit,omitempty" mcp:"maximum number of history records to return (default: all)"`
}

type ChatParams struct {
	Message string `json:"message" mcp:"the user message for the content assistant"`
}

type PublishPostParams struct {
	Title         string   `json:"title" mcp:"post title; the slug is derived from it"`
	Author        string   `json:"author,omitempty" mcp:"author display name"`
	Excerpt       string   `json:"excerpt,omitempty" mcp:"short summary shown in listings"`
	Tags          []string `json:"tags,omitempty" mcp:"topic tags"`
	Content       string   `json:"content" mcp:"post body"`
	FeaturedImage string   `json:"featured_image,omitempty" mcp:"featured image reference"`
}

type ListPostsParams struct {
	Slug string `json:"slug,omitempty" mcp:"return only the post with this slug"`
}

// StudioMCPServer exposes the persistence subsystem over MCP tools.
type StudioMCPServer struct {
	studio *studio.Studio
}

func NewStudioMCPServer(st *studio.Studio) *StudioMCPServer {
	return &StudioMCPServer{studio: st}
}

func (s *StudioMCPServer) AnalyzeContent(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AnalyzeContentParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	log.Printf("📊 MCP Server: Analyzing content (%d chars)", len(args.Content))

	if strings.TrimSpace(args.Content) == "" {
		return textResult("❌ Content is empty, nothing to analyze"), nil
	}

	rec, err := s.studio.Analysis.Analyze(ctx, args.Content)
	if err != nil {
		return textResult(fmt.Sprintf("❌ Analysis failed: %v", err)), nil
	}

	return jsonResult(rec)
}

func (s *StudioMCPServer) GetAnalysisHistory(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[GetAnalysisHistoryParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	items, err := s.studio.Analysis.History()
	if err != nil {
		return textResult(fmt.Sprintf("❌ Failed to load analysis history: %v", err)), nil
	}
	if args.Limit > 0 && args.Limit < len(items) {
		items = items[:args.Limit]
	}

	log.Printf("📊 MCP Server: Returning %d analysis records", len(items))
	return jsonResult(items)
}

func (s *StudioMCPServer) Chat(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ChatParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	if strings.TrimSpace(args.Message) == "" {
		return textResult("❌ Message is empty"), nil
	}

	log.Printf("💬 MCP Server: Chat turn (%d chars)", len(args.Message))

	items, err := s.studio.Chat.Send(ctx, args.Message)
	if err != nil {
		// the conversation still holds the locally synthesized notice
		log.Printf("⚠️ Chat reply failed: %v", err)
	}
	if len(items) == 0 {
		return textResult("❌ Conversation is unavailable"), nil
	}

	// items are most-recent-first; the reply is the newest model turn
	reply := items[0].Payload
	return jsonResult(reply)
}

func (s *StudioMCPServer) PublishPost(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[PublishPostParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	log.Printf("📝 MCP Server: Publishing post %q", args.Title)

	rec, err := s.studio.Blog.Publish(blog.Post{
		Title:         args.Title,
		Author:        args.Author,
		Excerpt:       args.Excerpt,
		Tags:          args.Tags,
		Content:       args.Content,
		FeaturedImage: args.FeaturedImage,
	})
	if err != nil {
		return textResult(fmt.Sprintf("❌ Failed to publish post: %v", err)), nil
	}

	return jsonResult(rec)
}

func (s *StudioMCPServer) ListPosts(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListPostsParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments

	if args.Slug != "" {
		rec, err := s.studio.Blog.BySlug(args.Slug)
		if err != nil {
			return textResult(fmt.Sprintf("❌ %v", err)), nil
		}
		return jsonResult(rec)
	}

	items, err := s.studio.Blog.Posts()
	if err != nil {
		return textResult(fmt.Sprintf("❌ Failed to load posts: %v", err)), nil
	}
	log.Printf("📝 MCP Server: Returning %d posts", len(items))
	return jsonResult(items)
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	log.Printf("🚀 Starting Content Studio MCP Server")

	backend, err := storage.NewFileBackend(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to init storage: %v", err)
	}

	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	client, err := factory.CreateClient(string(cfg.LLMProvider))
	if err != nil {
		log.Fatalf("❌ Failed to create llm client: %v", err)
	}

	st := studio.New(studio.Config{
		Backend:       backend,
		Client:        client,
		AnalysisLimit: cfg.AnalysisHistoryLimit,
		ChatWindow:    cfg.ChatHistoryTTL,
	})

	studioServer := NewStudioMCPServer(st)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "content-studio-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_content",
		Description: "Runs readability and engagement analysis on content and records the result in the analysis history",
	}, studioServer.AnalyzeContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_analysis_history",
		Description: "Returns past content analyses, most recent first",
	}, studioServer.GetAnalysisHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Sends a message to the content assistant and returns its reply",
	}, studioServer.Chat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_post",
		Description: "Publishes a blog post with a slug derived from the title",
	}, studioServer.PublishPost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_posts",
		Description: "Lists published blog posts, or fetches one by slug",
	}, studioServer.ListPosts)

	log.Printf("📋 Registered tools: analyze_content, get_analysis_history, chat, publish_post, list_posts")
	log.Printf("🔗 Starting MCP server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ MCP Server failed: %v", err)
	}
}
