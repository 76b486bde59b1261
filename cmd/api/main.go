package main

import (
	"context"
	"log"

	"blogforge/api/router"
	"blogforge/config"
	"blogforge/db"
	"blogforge/eventbus"
	"blogforge/imaging"
	"blogforge/logger"
	"blogforge/recency"
	"blogforge/repositories"
	"blogforge/services"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	lg := logger.NewLogger(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}
	if err := db.InitRedis(ctx); err != nil {
		log.Fatal("failed to initialize Redis:", err)
	}

	blogRepo := repositories.NewBlogRepository(db.Database())
	postRepo := repositories.NewPostRepository(db.Database())

	idx := recency.NewStreamIndex(db.Redis(), cfg.Redis.StreamKey, cfg.Redis.MaxLen)
	rec := recency.NewAdapter(idx, lg)

	var bus eventbus.Publisher
	if cfg.Kafka.Brokers != "" {
		kb, err := eventbus.NewKafkaEventBus(cfg.Kafka.Brokers, lg)
		if err != nil {
			log.Fatal("failed to initialize Kafka producer:", err)
		}
		defer kb.Close()
		bus = kb
	}

	extractor, err := imaging.NewExiftoolExtractor(cfg.Imaging.ExiftoolPath)
	if err != nil {
		log.Fatal("failed to start exiftool:", err)
	}
	defer extractor.Close()

	pipeline := imaging.NewPipeline(extractor, logger.WithFields(lg, logger.Fields{"component": "imaging"}))

	blogs := services.NewBlogService(blogRepo, postRepo, rec, bus, cfg.Kafka.Topic, cfg.Gallery.RootDir, lg)
	posts := services.NewPostService(postRepo, lg)
	gallery := services.NewGalleryService(postRepo, pipeline, cfg.Gallery.RootDir, cfg.Gallery.PublicURLPrefix, lg)

	r := router.New(router.Deps{
		Blogs:    blogs,
		Posts:    posts,
		Gallery:  gallery,
		Recency:  rec,
		BlogRepo: blogRepo,
	})
	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
