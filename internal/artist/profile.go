// Package artist 作者介绍页数据
package artist

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/anoixa/daijo-gallery/internal/imageurl"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed bio.md
var defaultBio []byte

const frontMatterDelimiter = "---"

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// CareerEntry 经历条目
type CareerEntry struct {
	Year  string `json:"year" mapstructure:"year"`
	Event string `json:"event" mapstructure:"event"`
}

// Profile 作者介绍
type Profile struct {
	Name        string        `json:"name"`
	Headline    string        `json:"headline"`
	Quote       string        `json:"quote"`
	BioHTML     string        `json:"bioHtml"`
	PortraitURL string        `json:"portraitUrl"`
	Career      []CareerEntry `json:"career"`
}

// frontMatter bio 文件头部字段
type frontMatter struct {
	Name     string        `mapstructure:"name"`
	Headline string        `mapstructure:"headline"`
	Portrait string        `mapstructure:"portrait"`
	Quote    string        `mapstructure:"quote"`
	Career   []CareerEntry `mapstructure:"career"`
}

// Service 作者介绍服务，构造时渲染一次
type Service struct {
	profile Profile
}

// NewService 从 bioPath 加载作者介绍，路径为空或读取失败时使用内置介绍
func NewService(resolver *imageurl.Resolver, bioPath string) (*Service, error) {
	source := defaultBio
	if bioPath != "" {
		data, err := os.ReadFile(bioPath)
		if err != nil {
			log.Printf("[Artist] Failed to read bio %s, using built-in bio: %v", bioPath, err)
		} else {
			source = data
		}
	}

	profile, err := Parse(source, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artist bio: %w", err)
	}
	return &Service{profile: profile}, nil
}

// Profile 返回作者介绍的副本
func (s *Service) Profile() Profile {
	p := s.profile
	p.Career = append([]CareerEntry{}, s.profile.Career...)
	return p
}

// Parse 解析带 YAML 头部字段的 markdown 介绍
func Parse(source []byte, resolver *imageurl.Resolver) (Profile, error) {
	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	header, body, err := splitFrontMatter(source)
	if err != nil {
		return Profile{}, err
	}

	fm, err := decodeFrontMatter(header)
	if err != nil {
		return Profile{}, err
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert(body, &buf); err != nil {
		return Profile{}, fmt.Errorf("failed to render bio: %w", err)
	}

	profile := Profile{
		Name:     fm.Name,
		Headline: fm.Headline,
		Quote:    fm.Quote,
		BioHTML:  sanitizer.Sanitize(buf.String()),
		Career:   fm.Career,
	}
	if profile.Career == nil {
		profile.Career = []CareerEntry{}
	}
	if fm.Portrait != "" && resolver != nil {
		profile.PortraitURL = resolver.Resolve(fm.Portrait)
	}
	return profile, nil
}

// splitFrontMatter 按 "---" 行拆分头部与正文，没有头部时整个文件为正文
func splitFrontMatter(source []byte) ([]byte, []byte, error) {
	rest, ok := bytes.CutPrefix(source, []byte(frontMatterDelimiter+"\n"))
	if !ok {
		return nil, source, nil
	}

	for offset := 0; offset < len(rest); {
		line := rest[offset:]
		next := len(rest)
		if end := bytes.IndexByte(line, '\n'); end >= 0 {
			line = line[:end]
			next = offset + end + 1
		}
		if strings.TrimSpace(string(line)) == frontMatterDelimiter {
			return rest[:offset], rest[next:], nil
		}
		offset = next
	}
	return nil, nil, fmt.Errorf("front matter is not closed")
}

// decodeFrontMatter 用 viper 读取 YAML 头部，再解码到 frontMatter
func decodeFrontMatter(header []byte) (frontMatter, error) {
	var fm frontMatter
	if len(bytes.TrimSpace(header)) == 0 {
		return fm, nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(header)); err != nil {
		return fm, fmt.Errorf("failed to parse front matter: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fm,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fm, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return fm, fmt.Errorf("failed to decode front matter: %w", err)
	}
	return fm, nil
}
