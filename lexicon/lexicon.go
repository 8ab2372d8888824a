// Package lexicon holds the symbol lists and thresholds that drive the
// extraction heuristics. A Lexicon is read-only once built and may be shared
// by any number of concurrent parses.
package lexicon

// Lexicon is the tunable configuration of the extraction pipeline.
type Lexicon struct {
	// Tag groups.
	BlockTags     []string `yaml:"block_tags" json:"block_tags"`
	SelfClosing   []string `yaml:"self_closing" json:"self_closing"`
	MediaTags     []string `yaml:"media_tags" json:"media_tags"`
	SourceTags    []string `yaml:"source_tags" json:"source_tags"`
	UselessTags   []string `yaml:"useless_tags" json:"useless_tags"`
	ContainerTags []string `yaml:"container_tags" json:"container_tags"`
	KillTags      []string `yaml:"kill_tags" json:"kill_tags"`
	LazySrcAttrs  []string `yaml:"lazy_src_attrs" json:"lazy_src_attrs"`

	// Identity token symbols.
	Positive         []string `yaml:"positive" json:"positive"`
	Negative         []string `yaml:"negative" json:"negative"`
	ForceKeep        []string `yaml:"force_keep" json:"force_keep"`
	Ignored          []string `yaml:"ignored" json:"ignored"`
	IgnoredPrefix    []string `yaml:"ignored_prefix" json:"ignored_prefix"`
	IgnoredSuffix    []string `yaml:"ignored_suffix" json:"ignored_suffix"`
	IgnoredInContent []string `yaml:"ignored_in_content" json:"ignored_in_content"`
	IgnoredBottom    []string `yaml:"ignored_bottom" json:"ignored_bottom"`
	IgnoredMeta      []string `yaml:"ignored_meta" json:"ignored_meta"`
	GridTokens       []string `yaml:"grid_tokens" json:"grid_tokens"`

	// Source URL fragments.
	NegativeSources []string `yaml:"negative_sources" json:"negative_sources"`
	PositiveSources []string `yaml:"positive_sources" json:"positive_sources"`

	// Trailing "related content" phrases.
	RelatedPhrases []string `yaml:"related_phrases" json:"related_phrases"`

	// Attribute allow-lists for post-clean and attachments.
	KeepAttributes    []string            `yaml:"keep_attributes" json:"keep_attributes"`
	ElementAttributes map[string][]string `yaml:"element_attributes" json:"element_attributes"`

	// Marker at the start of the first cell of a two-cell code table.
	CodeBlockMarker string `yaml:"code_block_marker" json:"code_block_marker"`

	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
}

// Thresholds are the numeric knobs of the heuristics.
type Thresholds struct {
	MinParagraphLength    int     `yaml:"min_paragraph_length" json:"min_paragraph_length"`
	MaxClassLength        int     `yaml:"max_class_length" json:"max_class_length"`
	MinNegativeTextLength int     `yaml:"min_negative_text_length" json:"min_negative_text_length"`
	MaxDepth              int     `yaml:"max_depth" json:"max_depth"`
	MinContentLength      int     `yaml:"min_content_length" json:"min_content_length"`
	MinScoreGap           float64 `yaml:"min_score_gap" json:"min_score_gap"`
	MaxIdentities         int     `yaml:"max_identities" json:"max_identities"`
	MaxRelatedLength      int     `yaml:"max_related_length" json:"max_related_length"`
	RelatedRatio          float64 `yaml:"related_ratio" json:"related_ratio"`
	MaxAncestorHops       int     `yaml:"max_ancestor_hops" json:"max_ancestor_hops"`
	MinBodyParagraphs     int     `yaml:"min_body_paragraphs" json:"min_body_paragraphs"`
	SummaryLength         int     `yaml:"summary_length" json:"summary_length"`
	MaxAuthorLength       int     `yaml:"max_author_length" json:"max_author_length"`
}

// Default returns a fresh copy of the built-in lexicon.
func Default() *Lexicon {
	return &Lexicon{
		BlockTags:     []string{"div", "article", "section", "table", "ul", "ol", "p", "td", "dl"},
		SelfClosing:   []string{"br", "hr", "img", "col", "source", "embed", "param"},
		MediaTags:     []string{"video", "audio", "object", "embed", "iframe"},
		SourceTags:    []string{"img", "video", "audio", "object", "embed", "iframe"},
		UselessTags:   []string{"form", "fieldset", "font"},
		ContainerTags: []string{"div", "section", "article", "td"},
		KillTags: []string{
			"button", "input", "select", "textarea", "label", "optgroup", "command",
			"datalist", "script", "noscript", "style", "frame", "frameset", "noframes",
			"canvas", "applet", "map", "nav", "blink", "marquee", "area", "base", "svg",
		},
		LazySrcAttrs: []string{"data-src", "data-actualsrc", "data-original", "data-original-src"},

		Positive:         []string{"article", "post", "content", "entry"},
		ForceKeep:        []string{"with-sidebar", "comments-open", "comments-closed", "content", "main", "post", "article"},
		Ignored:          []string{"carousel", "comment", "comments", "adblk", "instapaper_ignore", "languages", "toc"},
		IgnoredPrefix:    []string{"ad-", "ad_", "google_ads_"},
		IgnoredSuffix:    []string{"_ad", "-ad"},
		IgnoredInContent: []string{"hide", "hidden"},
		Negative: []string{
			"side", "sub-", "sub_", "subcontent", "bar", "button", "btn", "navi",
			"prev", "next", "foot-", "foot_", "footer", "tags", "tag", "share",
			"bshare", "bdshare", "sharing", "wpsns", "wpl-likebox ", "read_later ",
			"digg", "recommend", "recowrap", "comment", "related", "refer", "vote",
			"rss", "subscribe", "newsletter",
		},
		IgnoredBottom: []string{
			"disqus", "random", "tuijian", "jiathis", "wumii", "related-posts",
			"comments", "commentbox", "comment-list", "commentlist", "blog_comm",
			"author-box", "article-related", "metadata",
		},
		IgnoredMeta: []string{"author"},
		GridTokens:  []string{"col-", "offset", "pull-", "-sm-", "-xs-", "-md-", "-lg-", "-xl-"},

		NegativeSources: []string{
			"/ad/", "/ad.", ".ad.", "g.csdn.net", ".adsfactor.net", ".allyes.com",
			".2mdn.net", "adbrite.com", "adbureau.net", "admob.com", ".adpolestar.net",
			"advertising.com", "adzerk.net", "atdmt.com", "adg.nextag.com",
			"bannersxchange.com", "buysellads.com", "content.aimatch.com", "de17a.com",
			"doubleclick.net", "googlesyndication.com", "impact-ad.jp", "itmedia.jp",
			"microad.jp", "serving-sys.com", "feedsky.com", "addthis.org", "wumii.com",
			"printfriendly.com", "chanet.com.cn",
		},
		PositiveSources: []string{
			"tudou.com", "youku.com", "tv.sohu.com", "video.sina.com.cn",
			"swf.ws.126.net/movieplayer/", "player.letvcdn.com", "qiyi.com/player/",
			"img.hexun.com/swf/", "img.ifeng.com/swf/", "imgcache.qq.com/tencentvideo",
			"player.ku6cdn.com", ".slideshare.net", "vine.co", "video.ted.com",
			"youtube.com", "youtube-nocookie.com", "vimeo.com", "hulu.com", "yahoo.com",
			"flickr.com", "newsnetz.ch", "/media/",
		},

		RelatedPhrases: []string{
			"相关文章", "相关新闻", "相关链接", "更多阅读", "延伸阅读", "扩展阅读",
			"精彩推荐", "精选推荐", "编辑推荐", "关于作者", "讨论", "你还可能感兴趣",
			"喜欢这篇文章", "本文相关推荐", "分享", "打印", "relatedposts",
			"relevantposts", "similarposts", "comments", "commentlist", "related",
		},

		KeepAttributes: []string{"data-attachment", "data-flex"},
		ElementAttributes: map[string][]string{
			"a":      {"href", "title", "name"},
			"img":    {"src", "width", "height", "alt", "title"},
			"video":  {"src", "width", "height", "poster", "audio", "preload", "autoplay", "loop", "controls"},
			"audio":  {"src", "preload", "autoplay", "loop", "controls"},
			"source": {"src", "type"},
			"track":  {"default", "kind", "label", "src", "srclang"},
			"object": {"data", "type", "width", "height", "classid", "codebase", "codetype"},
			"param":  {"name", "value"},
			"embed":  {"src", "type", "width", "height", "flashvars", "allowscriptaccess", "allowfullscreen", "bgcolor"},
			"iframe": {"src", "width", "height", "frameborder", "scrolling"},
			"td":     {"colspan", "rowspan"},
			"th":     {"colspan", "rowspan"},
		},

		CodeBlockMarker: "123",

		Thresholds: Thresholds{
			MinParagraphLength:    20,
			MaxClassLength:        25,
			MinNegativeTextLength: 120,
			MaxDepth:              20,
			MinContentLength:      200,
			MinScoreGap:           2,
			MaxIdentities:         5,
			MaxRelatedLength:      20,
			RelatedRatio:          3,
			MaxAncestorHops:       5,
			MinBodyParagraphs:     5,
			SummaryLength:         120,
			MaxAuthorLength:       48,
		},
	}
}

// Has reports whether tag is one of tags.
func Has(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AllowedAttribute reports whether attr survives post-clean on tag.
func (l *Lexicon) AllowedAttribute(tag, attr string) bool {
	return Has(l.KeepAttributes, attr) || Has(l.ElementAttributes[tag], attr)
}
