//go:build integration
// +build integration

// TestDaemon 管理独立 pyassist-server 进程的启动与关闭
package framework

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TestDaemon 测试服务进程
type TestDaemon struct {
	Name     string
	HTTPPort int
	DataDir  string
	// AudioDir 允许转写的音频目录
	AudioDir string

	openAIURL string
	voskURL   string

	cmd     *exec.Cmd
	baseURL string
}

// DaemonOption 服务进程配置选项
type DaemonOption func(*TestDaemon)

// WithOpenAI 指定模型与向量化服务地址
func WithOpenAI(url string) DaemonOption {
	return func(d *TestDaemon) { d.openAIURL = url }
}

// WithVosk 指定语音识别服务地址
func WithVosk(url string) DaemonOption {
	return func(d *TestDaemon) { d.voskURL = url }
}

// WithHTTPPort 使用指定端口（单实例场景）
func WithHTTPPort(port int) DaemonOption {
	return func(d *TestDaemon) {
		d.HTTPPort = port
		d.baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	}
}

// NewTestDaemon 创建测试服务进程，配置写入隔离的数据目录
func NewTestDaemon(binaryPath, name string, opts ...DaemonOption) (*TestDaemon, error) {
	httpPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate HTTP port: %w", err)
	}

	dataDir, err := os.MkdirTemp("", fmt.Sprintf("pyassist-test-%s-", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	d := &TestDaemon{
		Name:      name,
		HTTPPort:  httpPort,
		DataDir:   dataDir,
		AudioDir:  filepath.Join(dataDir, "audio"),
		openAIURL: "http://127.0.0.1:1",
		voskURL:   "ws://127.0.0.1:1",
		baseURL:   fmt.Sprintf("http://127.0.0.1:%d", httpPort),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := os.MkdirAll(d.AudioDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	configPath, err := d.writeConfig()
	if err != nil {
		return nil, err
	}

	d.cmd = exec.Command(binaryPath, "--config", configPath)
	// 清空会覆盖配置文件的环境变量
	d.cmd.Env = append(os.Environ(),
		fmt.Sprintf("PYASSIST_DATA_DIR=%s", dataDir),
		"PYASSIST_HTTP_ADDR=",
		"OPENAI_BASE_URL=",
		"LLM_PROVIDER=",
		"LLM_MODEL=",
		"INDEX_PROVIDER=",
		"QDRANT_HOST=",
		"QDRANT_PORT=",
		"VOSK_URL=",
		"SYSTEM_PROMPT_PATH=",
		"GIN_MODE=test",
	)
	d.cmd.Stdout = os.Stdout
	d.cmd.Stderr = os.Stderr
	return d, nil
}

// writeConfig 生成 YAML 配置；向量索引指向无人监听的端口
func (d *TestDaemon) writeConfig() (string, error) {
	indexPort, err := getFreePort()
	if err != nil {
		return "", err
	}

	cfg := map[string]any{
		"server": map[string]any{
			"http_addr":       fmt.Sprintf("127.0.0.1:%d", d.HTTPPort),
			"request_timeout": "10s",
			"audio_dir":       d.AudioDir,
		},
		"llm": map[string]any{
			"provider": "openai",
			"base_url": d.openAIURL + "/v1",
			"api_key":  "test-key",
			"model":    "gpt-test",
			"timeout":  "5s",
		},
		"embedding": map[string]any{
			"base_url":  d.openAIURL + "/v1",
			"api_key":   "test-key",
			"model":     "text-embedding-3-small",
			"dimension": 8,
			"timeout":   "5s",
		},
		"index": map[string]any{
			"provider":  "qdrant",
			"host":      "127.0.0.1",
			"port":      indexPort,
			"name":      "dense-index",
			"namespace": "example",
			"top_k":     3,
		},
		"speech": map[string]any{
			"url":               d.voskURL,
			"handshake_timeout": "2s",
			"chunk_seconds":     0.25,
		},
		"prompt": map[string]any{
			"path":  "",
			"watch": false,
		},
		"tracking": map[string]any{
			"enabled": true,
			"db_path": filepath.Join(d.DataDir, "runs.db"),
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.DataDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// Start 启动服务进程并等待就绪
func (d *TestDaemon) Start() error {
	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon %s: %w", d.Name, err)
	}
	return d.waitForReady(30 * time.Second)
}

// Run 启动服务进程并等待其自行退出，返回退出码
func (d *TestDaemon) Run(timeout time.Duration) (int, error) {
	if err := d.cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start daemon %s: %w", d.Name, err)
	}

	done := make(chan error, 1)
	go func() { done <- d.cmd.Wait() }()

	select {
	case <-done:
		return d.cmd.ProcessState.ExitCode(), nil
	case <-time.After(timeout):
		_ = d.cmd.Process.Kill()
		<-done
		return -1, fmt.Errorf("daemon %s did not exit within %v", d.Name, timeout)
	}
}

// Stop 停止服务进程并清理数据目录
func (d *TestDaemon) Stop() error {
	return d.StopWithCleanup(true)
}

// StopWithCleanup 停止服务进程，可选择是否清理数据目录
func (d *TestDaemon) StopWithCleanup(cleanup bool) error {
	if d.cmd.Process != nil && d.cmd.ProcessState == nil {
		_ = d.cmd.Process.Signal(os.Interrupt)

		done := make(chan error, 1)
		go func() {
			done <- d.cmd.Wait()
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = d.cmd.Process.Kill()
			<-done
		}
	}

	if cleanup {
		return os.RemoveAll(d.DataDir)
	}
	return nil
}

// BaseURL 返回 HTTP 基础 URL
func (d *TestDaemon) BaseURL() string {
	return d.baseURL
}

// waitForReady 等待服务 health 端点就绪
func (d *TestDaemon) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(d.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}

	return fmt.Errorf("daemon %s failed to become ready within %v", d.Name, timeout)
}

// getFreePort 获取一个空闲的 TCP 端口
func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
