package lexical

// shorteners are matched exactly against the host, www. removed.
var shorteners = map[string]struct{}{
	"bit.ly": {}, "goo.gl": {}, "shorte.st": {}, "go2l.ink": {}, "x.co": {}, "ow.ly": {},
	"t.co": {}, "tinyurl.com": {}, "tr.im": {}, "is.gd": {}, "cli.gs": {}, "yfrog.com": {},
	"migre.me": {}, "ff.im": {}, "tiny.cc": {}, "url4.eu": {}, "twit.ac": {}, "su.pr": {},
	"twurl.nl": {}, "snipurl.com": {}, "short.to": {}, "budurl.com": {}, "ping.fm": {}, "post.ly": {},
	"just.as": {}, "bkite.com": {}, "snipr.com": {}, "fic.kr": {}, "loopt.us": {}, "doiop.com": {},
	"short.ie": {}, "kl.am": {}, "wp.me": {}, "rubyurl.com": {}, "om.ly": {}, "to.ly": {},
	"bit.do": {}, "lnkd.in": {}, "db.tt": {}, "qr.ae": {}, "adf.ly": {}, "bitly.com": {},
	"cur.lv": {}, "ity.im": {}, "q.gs": {}, "po.st": {}, "bc.vc": {}, "twitthis.com": {},
	"u.to": {}, "j.mp": {}, "buzurl.com": {}, "cutt.us": {}, "u.bb": {}, "yourls.org": {},
	"prettylinkpro.com": {}, "scrnch.me": {}, "filoops.info": {}, "vzturl.com": {}, "qr.net": {}, "1url.com": {},
	"tweez.me": {}, "v.gd": {}, "link.zip.net": {}, "amzn.to": {}, "murl.eu": {}, "buff.ly": {},
	"shortlink.com": {}, "qik.com": {}, "linkd.in": {}, "twitr.co": {}, "shrtfly.com": {}, "1drv.ms": {},
}

func isShortener(host string) bool {
	_, ok := shorteners[host]
	return ok
}
