package describecmder_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	describecmder "github.com/papercomputeco/glimpse/cmd/glimpse/describe"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func chunk(content string) string {
	data, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"delta":         map[string]any{"content": content},
			"finish_reason": nil,
		}},
	})
	return "data: " + string(data) + "\n\n"
}

var _ = Describe("Describe Command", func() {
	var (
		tmpDir     string
		imagePath  string
		configPath string
		server     *httptest.Server
		status     int

		mu     sync.Mutex
		bodies []map[string]any
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "glimpse-describe-test-*")
		Expect(err).NotTo(HaveOccurred())

		imagePath = filepath.Join(tmpDir, "gato.png")
		Expect(os.WriteFile(imagePath, pngHeader, 0o600)).To(Succeed())

		configPath = filepath.Join(tmpDir, "config.toml")
		Expect(os.WriteFile(configPath, []byte("[provider]\nname = \"openai\"\n"), 0o600)).To(Succeed())

		status = http.StatusOK
		bodies = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			_ = json.Unmarshal(raw, &body)
			mu.Lock()
			bodies = append(bodies, body)
			mu.Unlock()

			if status != http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
				return
			}

			w.Header().Set("Content-Type", "text/event-stream")
			for _, ev := range []string{chunk("Una foto"), chunk(""), chunk(" de un gato."), "data: [DONE]\n\n"} {
				fmt.Fprint(w, ev)
			}
		}))
	})

	AfterEach(func() {
		server.Close()
		os.RemoveAll(tmpDir)
	})

	run := func(args ...string) (string, string, error) {
		cmd := describecmder.NewDescribeCmd()
		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs(append([]string{"--config", configPath, "--base-url", server.URL + "/v1/"}, args...))
		err := cmd.Execute()
		return out.String(), errOut.String(), err
	}

	It("streams the description as plain text", func() {
		out, _, err := run("--plain", "--api-key", "sk-test", imagePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Una foto de un gato.\n"))
		Expect(out).NotTo(ContainSubstring("▌"))
		Expect(bodies).To(HaveLen(1))
	})

	It("appends the question to the instruction", func() {
		_, _, err := run("--plain", "--api-key", "sk-test", "-q", "¿Qué raza es?", imagePath)
		Expect(err).NotTo(HaveOccurred())

		Expect(bodies).To(HaveLen(1))
		raw, _ := json.Marshal(bodies[0])
		Expect(string(raw)).To(ContainSubstring("¿Qué raza es?"))
		Expect(string(raw)).To(ContainSubstring("data:image/png;base64,"))
	})

	It("warns and makes no call without an API key", func() {
		prev, had := os.LookupEnv("OPENAI_API_KEY")
		Expect(os.Unsetenv("OPENAI_API_KEY")).To(Succeed())
		DeferCleanup(func() {
			if had {
				os.Setenv("OPENAI_API_KEY", prev)
			}
		})

		_, errOut, err := run("--plain", imagePath)
		Expect(err).To(HaveOccurred())
		Expect(errOut).To(ContainSubstring("API key"))
		Expect(bodies).To(BeEmpty())
	})

	It("rejects files that are not jpg or png", func() {
		textPath := filepath.Join(tmpDir, "notes.txt")
		Expect(os.WriteFile(textPath, []byte("hola"), 0o600)).To(Succeed())

		_, _, err := run("--plain", "--api-key", "sk-test", textPath)
		Expect(err).To(MatchError(ContainSubstring("unsupported image")))
		Expect(bodies).To(BeEmpty())
	})

	It("reports a rejected key as a failed analysis", func() {
		status = http.StatusUnauthorized

		out, errOut, err := run("--plain", "--api-key", "sk-wrong", imagePath)
		Expect(err).To(MatchError(describecmder.ErrAnalysisFailed))
		Expect(strings.TrimSpace(out)).To(BeEmpty())
		Expect(errOut).To(ContainSubstring("Ha ocurrido un error"))
		Expect(errOut).To(ContainSubstring("401"))
	})
})
