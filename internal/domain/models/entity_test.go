package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

func TestExtractInviteHash(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{link: "https://t.me/+AbCdEf", want: "AbCdEf"},
		{link: "t.me/+AbC?start=1", want: "AbC"},
		{link: "https://t.me/joinchat/XyZ", want: "XyZ"},
		{link: "  https://t.me/joinchat/XyZ?x=1 ", want: "XyZ"},
		{link: "+15551234", want: ""},
		{link: "+AbCdEf", want: ""},
		{link: "@public_group", want: ""},
		{link: "https://t.me/public_group", want: ""},
		{link: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ExtractInviteHash(tt.link))
		})
	}
}

func TestParsePeerID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "-1001234567890", want: -1001234567890, wantOK: true},
		{in: " 42 ", want: 42, wantOK: true},
		{in: "-", wantOK: false},
		{in: "", wantOK: false},
		{in: "abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := models.ParsePeerID(tt.in)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
