package app

import (
	"errors"
	"reflect"
	"testing"
)

func fakeLookPath(found map[string]string) func(string) (string, error) {
	return func(cmd string) (string, error) {
		if path, ok := found[cmd]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}
}

func TestDetectClipboard(t *testing.T) {
	tests := []struct {
		name  string
		goos  string
		found map[string]string
		want  []string
	}{
		{
			name:  "pbcopy on unix",
			goos:  "linux",
			found: map[string]string{"pbcopy": "/usr/bin/pbcopy", "xclip": "/usr/bin/xclip"},
			want:  []string{"/usr/bin/pbcopy"},
		},
		{
			name:  "xclip targets the clipboard selection",
			goos:  "linux",
			found: map[string]string{"xclip": "/usr/bin/xclip"},
			want:  []string{"/usr/bin/xclip", "-selection", "clipboard"},
		},
		{
			name:  "xsel reads stdin",
			goos:  "linux",
			found: map[string]string{"xsel": "/usr/bin/xsel"},
			want:  []string{"/usr/bin/xsel", "--clipboard", "--input"},
		},
		{
			name:  "clip on windows",
			goos:  "windows",
			found: map[string]string{"clip.exe": `C:\Windows\System32\clip.exe`},
			want:  []string{`C:\Windows\System32\clip.exe`},
		},
		{
			name:  "powershell fallback",
			goos:  "windows",
			found: map[string]string{"powershell": `C:\ps\powershell.exe`},
			want:  []string{`C:\ps\powershell.exe`, "-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detectClipboardInternal(tt.goos, fakeLookPath(tt.found))
			if !ok {
				t.Fatalf("expected clipboard command")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, ok := detectClipboardInternal("linux", fakeLookPath(nil)); ok {
		t.Fatalf("expected no clipboard without candidates")
	}
}

func TestRevealCommand(t *testing.T) {
	tests := []struct {
		name  string
		goos  string
		path  string
		isDir bool
		found map[string]string
		want  []string
	}{
		{"darwin file", "darwin", "/p/a.txt", false, nil, []string{"open", "-R", "/p/a.txt"}},
		{"darwin dir", "darwin", "/p/src", true, nil, []string{"open", "/p/src"}},
		{"windows file", "windows", `C:\p\a.txt`, false, nil, []string{"explorer", `/select,C:\p\a.txt`}},
		{"linux file opens parent", "linux", "/p/src/a.txt", false, map[string]string{"xdg-open": "/usr/bin/xdg-open"}, []string{"/usr/bin/xdg-open", "/p/src"}},
		{"linux dir", "linux", "/p/src", true, map[string]string{"xdg-open": "/usr/bin/xdg-open"}, []string{"/usr/bin/xdg-open", "/p/src"}},
		{"gio fallback", "linux", "/p/src", true, map[string]string{"gio": "/usr/bin/gio"}, []string{"/usr/bin/gio", "open", "/p/src"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := revealCommand(tt.goos, tt.path, tt.isDir, fakeLookPath(tt.found))
			if !ok {
				t.Fatalf("expected reveal command")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, ok := revealCommand("linux", "/p", true, fakeLookPath(nil)); ok {
		t.Fatalf("expected no reveal command without a file manager")
	}
}

func TestDetectEditorCommand(t *testing.T) {
	tests := []struct {
		name  string
		goos  string
		env   map[string]string
		found map[string]string
		want  []string
	}{
		{
			name:  "visual wins over editor",
			goos:  "linux",
			env:   map[string]string{"VISUAL": "code --wait", "EDITOR": "nano"},
			found: map[string]string{"code": "/usr/bin/code", "nano": "/usr/bin/nano"},
			want:  []string{"/usr/bin/code", "--wait"},
		},
		{
			name:  "missing visual falls through to editor",
			goos:  "linux",
			env:   map[string]string{"VISUAL": "missing", "EDITOR": "nano"},
			found: map[string]string{"nano": "/usr/bin/nano"},
			want:  []string{"/usr/bin/nano"},
		},
		{
			name:  "unix default",
			goos:  "linux",
			found: map[string]string{"vim": "/usr/bin/vim"},
			want:  []string{"/usr/bin/vim"},
		},
		{
			name:  "windows default",
			goos:  "windows",
			found: map[string]string{"notepad.exe": `C:\Windows\notepad.exe`},
			want:  []string{`C:\Windows\notepad.exe`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.env[key] }
			got, ok := detectEditorCommandInternal(tt.goos, getenv, fakeLookPath(tt.found))
			if !ok {
				t.Fatalf("expected editor command")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseEditorCommand(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"vim", []string{"vim"}},
		{"  code   --wait ", []string{"code", "--wait"}},
		{`"/opt/my editor/bin" -n`, []string{"/opt/my editor/bin", "-n"}},
		{`emacsclient -a '' -t`, []string{"emacsclient", "-a", "-t"}},
	}
	for _, tt := range tests {
		if got := parseEditorCommand(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseEditorCommand(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
