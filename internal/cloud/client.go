package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Config holds the mirror server settings, persisted next to the store.
type Config struct {
	ServerURL string `json:"server_url"`
	Owner     string `json:"owner"`
	Salt      string `json:"salt,omitempty"` // base64, key derivation salt
}

// Client pushes exported record batches to the mirror server and
// fetches the shared-projects feed. It never touches the local store.
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
	crypto     *Crypto
}

// NewClient creates a client, loading any saved config from
// ~/.portfolio/cloud.json.
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	c := &Client{
		configPath: filepath.Join(home, ".portfolio", "cloud.json"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c, nil
}

func (c *Client) loadConfig() {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.config = &Config{ServerURL: "http://localhost:8080"}
		return
	}
	c.config = &Config{}
	if err := json.Unmarshal(data, c.config); err != nil || c.config.ServerURL == "" {
		c.config = &Config{ServerURL: "http://localhost:8080"}
	}
}

func (c *Client) saveConfig() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer points the client at a mirror server.
func (c *Client) SetServer(url string) error {
	c.config.ServerURL = url
	return c.saveConfig()
}

// SetOwner sets the owner name stamped on exported project records.
func (c *Client) SetOwner(owner string) error {
	c.config.Owner = owner
	return c.saveConfig()
}

// Owner returns the configured owner name, or a fallback.
func (c *Client) Owner() string {
	if c.config.Owner == "" {
		return "anonymous"
	}
	return c.config.Owner
}

// EnableEncryption derives an encryption key from passphrase,
// generating and persisting a salt on first use.
func (c *Client) EnableEncryption(passphrase string) error {
	var salt []byte
	if c.config.Salt != "" {
		var err error
		if salt, err = base64.StdEncoding.DecodeString(c.config.Salt); err != nil {
			return fmt.Errorf("stored salt is corrupt: %w", err)
		}
	} else {
		var err error
		if salt, err = GenerateSalt(); err != nil {
			return err
		}
		c.config.Salt = base64.StdEncoding.EncodeToString(salt)
		if err := c.saveConfig(); err != nil {
			return err
		}
	}
	c.crypto = NewCrypto(passphrase, salt)
	return nil
}

// encryptRecords returns a copy of records with text fields sealed.
// Without a configured key the batch passes through unchanged.
func (c *Client) encryptRecords(records []ExternalRecord) ([]ExternalRecord, error) {
	if c.crypto == nil {
		return records, nil
	}
	out := make([]ExternalRecord, len(records))
	for i, r := range records {
		fields := make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			text, ok := v.(string)
			if !ok || k == "owner" {
				fields[k] = v
				continue
			}
			sealed, err := c.crypto.Encrypt(text)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt record %s: %w", r.ID, err)
			}
			fields[k] = sealed
		}
		r.Fields = fields
		out[i] = r
	}
	return out, nil
}

// PushRecords uploads one export batch. The server applies it in batch
// order and upserts by record id, so re-pushing an unchanged project
// is harmless.
func (c *Client) PushRecords(ctx context.Context, records []ExternalRecord) error {
	records, err := c.encryptRecords(records)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.ServerURL+"/api/v1/records", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push failed: %s", string(respBody))
	}
	return nil
}

// DeleteRecord removes a record from the mirror; the server cascades
// to child records.
func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.config.ServerURL+"/api/v1/records/"+recordID, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed: %s", string(respBody))
	}
	return nil
}

// FetchShared retrieves the community feed of shared projects.
func (c *Client) FetchShared(ctx context.Context) ([]SharedProject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.ServerURL+"/api/v1/shared", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch failed: %s", string(respBody))
	}

	var result struct {
		Projects []SharedProject `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Projects, nil
}

// FetchSharedItems retrieves the items of one shared project.
func (c *Client) FetchSharedItems(ctx context.Context, projectRecordID string) ([]SharedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.ServerURL+"/api/v1/shared/"+projectRecordID+"/items", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch failed: %s", string(respBody))
	}

	var result struct {
		Items []SharedItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Items, nil
}
