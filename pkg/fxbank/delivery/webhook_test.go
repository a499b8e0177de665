package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	configPkg "github.com/KeynihAV/fxbank/pkg/config"
	"github.com/KeynihAV/fxbank/pkg/logging"
)

func testConfig() *configPkg.Config {
	config := &configPkg.Config{}
	config.Bot.Token = "123:test-token"
	config.Bot.WebhookSecret = "supersecret"
	config.Bot.BankPassword = "bankpass"
	config.Bot.BaseCurrency = "UAH"
	return config
}

func TestWebhookPath(t *testing.T) {
	config := testConfig()
	if got := WebhookPath(config); got != "/webhook/supersecret" {
		t.Errorf("WebhookPath() = %v", got)
	}

	// без секрета путь выводится из хэша токена и не содержит сам токен
	config.Bot.WebhookSecret = ""
	got := WebhookPath(config)
	if len(got) != len("/webhook/")+64 {
		t.Errorf("путь из хэша токена: %v", got)
	}
	if bytes.Contains([]byte(got), []byte(config.Bot.Token)) {
		t.Errorf("токен попал в путь: %v", got)
	}
}

func TestWebhookServer_Health(t *testing.T) {
	ws := NewWebhookServer(testConfig(), ModePolling, logging.New())
	srv := httptest.NewServer(ws.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %v", resp.StatusCode)
	}

	health := &healthStatus{}
	err = json.NewDecoder(resp.Body).Decode(health)
	if err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Mode != ModePolling {
		t.Errorf("health = %+v", health)
	}
}

func TestWebhookServer_Webhook(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		body       string
		wantStatus int
		wantOK     bool
		wantUpdate bool
	}{
		{name: "валидный апдейт",
			secret:     "supersecret",
			body:       `{"update_id": 7, "message": {"message_id": 1, "text": "hi", "chat": {"id": 42}}}`,
			wantStatus: http.StatusOK,
			wantOK:     true,
			wantUpdate: true,
		},
		{name: "битый payload все равно 200",
			secret:     "supersecret",
			body:       `{"update_id": `,
			wantStatus: http.StatusOK,
			wantOK:     false,
		},
		{name: "неверный секрет в заголовке",
			secret:     "wrong",
			body:       `{"update_id": 7}`,
			wantStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWebhookServer(testConfig(), ModeWebhook, logging.New())
			srv := httptest.NewServer(ws.Router())
			defer srv.Close()

			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhook/supersecret",
				bytes.NewBufferString(tt.body))
			req.Header.Set(secretTokenHeader, tt.secret)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %v, want %v", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			ack := &webhookAck{}
			err = json.NewDecoder(resp.Body).Decode(ack)
			if err != nil {
				t.Fatalf("decode ack: %v", err)
			}
			if ack.OK != tt.wantOK {
				t.Errorf("ack = %+v, want ok %v", ack, tt.wantOK)
			}

			select {
			case update := <-ws.Updates():
				if !tt.wantUpdate {
					t.Errorf("неожиданный апдейт: %+v", update)
				} else if update.UpdateID != 7 {
					t.Errorf("update_id = %v", update.UpdateID)
				}
			default:
				if tt.wantUpdate {
					t.Error("апдейт не попал в канал")
				}
			}
		})
	}
}
