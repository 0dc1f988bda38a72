//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/gopher-digest/internal/bootstrap"
	"github.com/yanqian/gopher-digest/internal/domain/digest"
	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	"github.com/yanqian/gopher-digest/internal/infra/fetcher"
	"github.com/yanqian/gopher-digest/internal/infra/llm/chatgpt"
	"github.com/yanqian/gopher-digest/internal/infra/tokens"
	httpiface "github.com/yanqian/gopher-digest/internal/interface/http"
	"github.com/yanqian/gopher-digest/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideExtractionConfig,
		provideFetcher,
		provideSummaryConfig,
		provideChatGPTClient,
		provideDigestConfig,
		provideSummaryCache,
		provideArticleArchive,
		provideSnapshotStore,
		tokens.NewCounter,
		extraction.NewService,
		summarizer.NewService,
		digest.NewService,
		wire.Bind(new(extraction.Fetcher), new(*fetcher.Client)),
		wire.Bind(new(summarizer.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(summarizer.TokenCounter), new(*tokens.Counter)),
		wire.Bind(new(digest.Extractor), new(extraction.Service)),
		wire.Bind(new(digest.Summarizer), new(summarizer.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
