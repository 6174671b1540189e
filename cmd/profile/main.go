package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/artifact"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/config"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/logging"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/model"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/service"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
)

const examplePreferences = "action adventure games with great story amazing graphics multiplayer cooperative"

func main() {
	preferences := flag.String("preferences", examplePreferences, "what kind of games you like")
	genres := flag.String("genres", "", "comma-separated preferred genres")
	top := flag.Int("top", 100, "number of recommendations")
	out := flag.String("out", "user_recommendations.csv", "CSV output file, empty to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("recommender-profile", "info", "text").WithError(err).Fatal("failed to load config")
	}
	log := logging.New("recommender-profile", cfg.LogLevel, cfg.LogFormat)

	bundle, err := artifact.Load(cfg.ArtifactPaths())
	if err != nil {
		log.WithError(err).Fatal("failed to load model artifacts")
	}
	normalizer, err := textproc.New()
	if err != nil {
		log.WithError(err).Fatal("failed to load lemmatizer")
	}
	engine, err := model.NewEngine(normalizer, bundle.Model, bundle.Vectors, bundle.Games)
	if err != nil {
		log.WithError(err).Fatal("model artifacts are inconsistent")
	}

	svc := service.NewService(engine, nil, log, service.Options{
		DefaultTopN: cfg.DefaultTopN,
		MaxTopN:     cfg.MaxTopN,
	})
	genreList := splitGenres(*genres)
	log.WithField("profile", service.BuildProfile(*preferences, genreList)).Info("generating recommendations")

	recs, err := svc.RecommendProfile(context.Background(), *preferences, genreList, *top)
	if err != nil {
		log.WithError(err).Fatal("recommendation failed")
	}
	if len(recs) == 0 {
		fmt.Println("No matching games found. Try using different keywords.")
		return
	}
	printTiers(os.Stdout, recs)

	if *out == "" {
		return
	}
	if err := writeCSV(*out, recs); err != nil {
		log.WithError(err).Fatal("failed to save recommendations")
	}
	log.WithField("file", *out).Info("recommendations saved")
}

func splitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func printTiers(w io.Writer, recs []domain.ProfileRecommendation) {
	level := ""
	for _, r := range recs {
		if r.Level != level {
			level = r.Level
			fmt.Fprintf(w, "\n%s\n%s\n", strings.ToUpper(level), strings.Repeat("-", 80))
		}
		fmt.Fprintf(w, "%3d. %-50s Match: %5.1f%%\n", r.Rank, r.GameName, r.MatchPercentage)
	}
}

func writeCSV(path string, recs []domain.ProfileRecommendation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"game_id", "game_name", "similarity_score", "match_percentage", "rank", "recommendation_level"}); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			strconv.FormatInt(r.GameID, 10),
			r.GameName,
			strconv.FormatFloat(r.SimilarityScore, 'f', -1, 64),
			strconv.FormatFloat(r.MatchPercentage, 'f', -1, 64),
			strconv.Itoa(r.Rank),
			r.Level,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}
