package watchdog

import (
	"fmt"
	"testing"
	"time"

	"github.com/KeynihAV/fxbank/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

type fakeAPI struct {
	registered string
	infoErr    error
	setErr     error
	setNotOK   bool
	setCalls   int
}

func (fa *fakeAPI) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	if fa.infoErr != nil {
		return tgbotapi.WebhookInfo{}, fa.infoErr
	}
	return tgbotapi.WebhookInfo{URL: fa.registered}, nil
}

func (fa *fakeAPI) SetWebhook(config tgbotapi.WebhookConfig) (tgbotapi.APIResponse, error) {
	fa.setCalls++
	if fa.setErr != nil {
		return tgbotapi.APIResponse{}, fa.setErr
	}
	if fa.setNotOK {
		return tgbotapi.APIResponse{Ok: false, ErrorCode: 429, Description: "flood"}, nil
	}
	fa.registered = config.URL.String()
	return tgbotapi.APIResponse{Ok: true}, nil
}

func TestWatchdog_Reconcile(t *testing.T) {
	const desired = "https://bot.example.com/webhook/abc"

	tests := []struct {
		name      string
		api       *fakeAPI
		wantErr   bool
		wantCalls int
		wantURL   string
	}{
		{name: "URL совпадает, перерегистрация не нужна",
			api:       &fakeAPI{registered: desired},
			wantCalls: 0,
			wantURL:   desired,
		},
		{name: "URL сбился, перерегистрируем",
			api:       &fakeAPI{registered: ""},
			wantCalls: 1,
			wantURL:   desired,
		},
		{name: "чужой URL затирается",
			api:       &fakeAPI{registered: "https://evil.example.com/hook"},
			wantCalls: 1,
			wantURL:   desired,
		},
		{name: "ошибка запроса info",
			api:     &fakeAPI{infoErr: fmt.Errorf("network down")},
			wantErr: true,
		},
		{name: "ошибка установки",
			api:       &fakeAPI{registered: "", setErr: fmt.Errorf("network down")},
			wantErr:   true,
			wantCalls: 1,
		},
		{name: "телеграм ответил не ок",
			api:       &fakeAPI{registered: "", setNotOK: true},
			wantErr:   true,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wd := New(tt.api, desired, time.Minute, logging.New())

			err := wd.Reconcile()
			if (err != nil) != tt.wantErr {
				t.Errorf("Reconcile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.api.setCalls != tt.wantCalls {
				t.Errorf("SetWebhook вызван %v раз, want %v", tt.api.setCalls, tt.wantCalls)
			}
			if !tt.wantErr && tt.api.registered != tt.wantURL {
				t.Errorf("зарегистрирован %v, want %v", tt.api.registered, tt.wantURL)
			}
		})
	}
}

func TestWatchdog_StartStop(t *testing.T) {
	api := &fakeAPI{registered: ""}
	wd := New(api, "https://bot.example.com/webhook/abc", 10*time.Millisecond, logging.New())

	wd.Start()
	time.Sleep(50 * time.Millisecond)
	wd.Stop()

	if api.setCalls == 0 {
		t.Error("за время работы не было ни одной перерегистрации")
	}
	if api.registered != "https://bot.example.com/webhook/abc" {
		t.Errorf("после работы зарегистрирован %v", api.registered)
	}
}
