package dump

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/kekst/socialnuke/pkg/platform"
)

// MimeTypeFolder is the MIME type for Google Drive folders.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// DriveConfig holds paths for Google API authentication.
type DriveConfig struct {
	// CredentialsPath is the credentials.json from Google Cloud Console.
	CredentialsPath string
	// TokenPath is where the OAuth token is cached.
	TokenPath string
	// Folder is the Drive folder name dumps are stored under.
	Folder string
}

// DriveSink buffers snapshots in memory and uploads them as one JSON
// Lines file to Google Drive when closed.
type DriveSink struct {
	service  *drive.Service
	folder   string
	name     string
	lines    []string
	uploaded string // webViewLink of the uploaded file
}

// NewDriveSink authenticates against Google Drive and prepares a sink
// that will upload under cfg.Folder as name.jsonl.
func NewDriveSink(ctx context.Context, cfg *DriveConfig, name string) (*DriveSink, error) {
	httpClient, err := authenticate(ctx, cfg)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "socialnuke dumps"
	}

	return &DriveSink{
		service: service,
		folder:  folder,
		name:    SanitizeFilename(name) + ".jsonl",
	}, nil
}

// Write buffers one snapshot.
func (s *DriveSink) Write(ctx context.Context, snap platform.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", snap.ID, err)
	}
	s.lines = append(s.lines, string(data))
	return nil
}

// URL returns the webViewLink of the uploaded file, once Close ran.
func (s *DriveSink) URL() string { return s.uploaded }

// Close uploads the buffered snapshots. Nothing is uploaded for an
// empty dump.
func (s *DriveSink) Close() error {
	if len(s.lines) == 0 {
		return nil
	}
	ctx := context.Background()

	folderID, err := s.ensureFolder(ctx)
	if err != nil {
		return err
	}

	file := &drive.File{
		Name:    s.name,
		Parents: []string{folderID},
	}
	body := strings.NewReader(strings.Join(s.lines, "\n") + "\n")

	created, err := s.service.Files.Create(file).
		Context(ctx).
		Media(body).
		Fields("id, webViewLink").
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload dump: %w", err)
	}
	s.uploaded = created.WebViewLink
	return nil
}

// ensureFolder finds or creates the dump folder.
func (s *DriveSink) ensureFolder(ctx context.Context) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(s.folder, "'", `\'`), MimeTypeFolder)

	result, err := s.service.Files.List().
		Context(ctx).
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for folder %q: %w", s.folder, err)
	}
	if len(result.Files) > 0 {
		return result.Files[0].Id, nil
	}

	created, err := s.service.Files.Create(&drive.File{
		Name:     s.folder,
		MimeType: MimeTypeFolder,
	}).Context(ctx).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", s.folder, err)
	}
	return created.Id, nil
}

// authenticate performs the OAuth 2.0 flow, reusing a cached token
// when it is still valid.
func authenticate(ctx context.Context, cfg *DriveConfig) (*http.Client, error) {
	credBytes, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", cfg.CredentialsPath, err)
	}

	oauthConfig, err := google.ConfigFromJSON(credBytes, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	if token, err := loadToken(cfg.TokenPath); err == nil && token.Valid() {
		return oauthConfig.Client(ctx, token), nil
	}

	token, err := tokenFromWeb(ctx, oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to get token: %w", err)
	}
	if err := saveToken(cfg.TokenPath, token); err != nil {
		fmt.Printf("Warning: could not save token: %v\n", err)
	}

	return oauthConfig.Client(ctx, token), nil
}

// tokenFromWeb runs a local callback server and a browser consent flow.
func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	config.RedirectURL = "http://localhost:8085/callback"

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errCh <- fmt.Errorf("no code in callback")
			fmt.Fprint(w, "Error: no authorization code received")
			return
		}
		codeCh <- code
		fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>")
	})

	server := &http.Server{Addr: ":8085", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer server.Close()

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println()
	fmt.Println("To authorize Drive uploads, visit this URL in your browser:")
	fmt.Println()
	fmt.Println("  ", authURL)
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	var code string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case code = <-codeCh:
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return config.Exchange(exchangeCtx, code)
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
