package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/facematch"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <folder-path>",
	Short: "Enroll every face photo in a folder",
	Long: `Enroll all face photos from a folder in one pass. Each person is
named after the file stem: photos/alice.jpg enrolls 'alice'.

Photos are encoded concurrently; files the encoder rejects are reported
and skipped. The database is saved once at the end.
Supported formats: jpg, jpeg, png, gif, webp, bmp, tiff

Example:
  facegate enroll ./photos
  facegate enroll -r ./photos --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", 5, "Number of parallel encoding requests")
	enrollCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".bmp":  true,
		".tiff": true,
		".tif":  true,
	}
	return supported[ext]
}

// collectImages lists the image files under folderPath.
func collectImages(folderPath string, recursive bool) ([]string, error) {
	info, err := os.Stat(folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folderPath)
	}

	var filePaths []string
	if recursive {
		err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isImageFile(d.Name()) {
				filePaths = append(filePaths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
		}
		return filePaths, nil
	}

	dirEntries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		if isImageFile(entry.Name()) {
			filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
		}
	}
	return filePaths, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	folderPath := args[0]
	concurrency := mustGetInt(cmd, "concurrency")
	recursive := mustGetBool(cmd, "recursive")
	if concurrency < 1 {
		concurrency = 1
	}

	cfg := loadConfig(cmd)
	ctx := context.Background()

	filePaths, err := collectImages(folderPath, recursive)
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		fmt.Println("No image files found in the specified folder.")
		return nil
	}

	fmt.Printf("Found %d image(s) to enroll from %s\n\n", len(filePaths), folderPath)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	enc := newEncoder(cfg)

	bar := progressbar.NewOptions(len(filePaths),
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	// Encode concurrently, then add sequentially in file order so the
	// enrollment order stays deterministic.
	type encoded struct {
		encoding []float32
		err      error
	}
	results := make([]encoded, len(filePaths))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, filePath := range filePaths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			encoding, err := enc.EncodeFile(ctx, path)
			results[i] = encoded{encoding: encoding, err: err}
			bar.Add(1)
		}(i, filePath)
	}
	wg.Wait()
	fmt.Println()

	var enrolled, failed int
	for i, filePath := range filePaths {
		fileName := filepath.Base(filePath)
		if results[i].err != nil {
			fmt.Printf("Failed: %s: %v\n", fileName, results[i].err)
			failed++
			continue
		}

		name := facematch.NameFromFile(filePath)
		if name == "" {
			fmt.Printf("Failed: %s: cannot derive a name from the filename\n", fileName)
			failed++
			continue
		}

		entry := database.Entry{Name: name, Encoding: results[i].encoding, Source: filePath}
		if err := store.Add(ctx, entry); err != nil {
			fmt.Printf("Failed: %s: %v\n", fileName, err)
			failed++
			continue
		}
		enrolled++
	}

	if enrolled > 0 {
		if err := store.Save(ctx); err != nil {
			return fmt.Errorf("failed to save database: %w", err)
		}
	}

	fmt.Printf("\nDone! Enrolled %d face(s)", enrolled)
	if failed > 0 {
		fmt.Printf(", %d failure(s)", failed)
	}
	fmt.Println()
	return nil
}
