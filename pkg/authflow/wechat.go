package authflow

const (
	WeChatProviderName = "wechat"

	wechatAuthorizeURL = "https://open.weixin.qq.com/connect/qrconnect"
	wechatTokenURL     = "https://api.weixin.qq.com/sns/oauth2/access_token"
	wechatRefreshURL   = "https://api.weixin.qq.com/sns/oauth2/refresh_token"
	wechatUserInfoURL  = "https://api.weixin.qq.com/sns/userinfo"

	// WeChatDefaultScope is the website-login scope; official-account
	// deployments override it with snsapi_userinfo.
	WeChatDefaultScope = "snsapi_login"
)

// wechatProfileKeys is the documented sns/userinfo payload.
var wechatProfileKeys = []string{
	"openid", "nickname", "sex", "province", "city",
	"country", "headimgurl", "privilege", "unionid",
}

// NewWeChat builds the WeChat Open Platform strategy. WeChat departs
// from vanilla OAuth2 in ways the flow core has to be told about: the
// token exchange is a GET, errors arrive inside a 200 body as
// errcode/errmsg, and the user-info call wants the openid alongside the
// access token.
func NewWeChat(appID, appSecret, redirectURL string, fns ...Option) (*Flow, error) {
	config := ProviderConfig{
		ClientID:             appID,
		ClientSecret:         appSecret,
		AuthorizeURL:         wechatAuthorizeURL,
		TokenURL:             wechatTokenURL,
		RefreshURL:           wechatRefreshURL,
		UserInfoURL:          wechatUserInfoURL,
		TokenMethod:          MethodGet,
		ErrorCodeKey:         "errcode",
		ErrorMessageKey:      "errmsg",
		SubjectKey:           "openid",
		UserInfoTokenParam:   "access_token",
		UserInfoSubjectParam: "openid",
		ProfileKeys:          wechatProfileKeys,
		InfoKeys: map[string]string{
			"name":  "nickname",
			"image": "headimgurl",
		},
	}
	opts := FlowOptions{
		DefaultScope: WeChatDefaultScope,
		UIDField:     "openid",
		RedirectURL:  redirectURL,
	}

	return NewFlow(WeChatProviderName, config, opts, fns...)
}
