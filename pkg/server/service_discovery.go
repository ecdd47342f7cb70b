package server

import (
	"strings"

	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/ua"
)

// transportProfileURI is the UA-TCP binary transport profile.
const transportProfileURI = "http://opcfoundation.org/UA-Profile/Transport/uatcp-uasc-uabinary"

// applicationDescription renders this server's ApplicationDescription.
func (s *Server) applicationDescription() ua.ApplicationDescription {
	return ua.ApplicationDescription{
		ApplicationURI:  s.config.ApplicationURI,
		ProductURI:      s.config.ProductURI,
		ApplicationName: ua.NewLocalizedText(s.config.ApplicationName),
		ApplicationType: 0, // server
		DiscoveryURLs:   []string{s.config.EndpointURL},
	}
}

// endpointDescriptions renders the advertised endpoints.
func (s *Server) endpointDescriptions() []ua.EndpointDescription {
	return []ua.EndpointDescription{
		{
			EndpointURL:       s.config.EndpointURL,
			Server:            s.applicationDescription(),
			SecurityMode:      ua.SecurityModeNone,
			SecurityPolicyURI: security.PolicyURINone,
			UserIdentityTokens: []ua.UserTokenPolicy{
				{PolicyID: "anonymous", TokenType: ua.UserTokenAnonymous},
				{PolicyID: "username", TokenType: ua.UserTokenUserName,
					SecurityPolicyURI: security.PolicyURIBasic256Sha256},
			},
			TransportProfileURI: transportProfileURI,
			SecurityLevel:       0,
		},
	}
}

func (s *Server) handleGetEndpoints(ctx *requestContext, req *ua.GetEndpointsRequest) any {
	endpoints := s.endpointDescriptions()

	// Filter by transport profile when the client names any.
	if len(req.ProfileURIs) > 0 {
		filtered := endpoints[:0]
		for _, e := range endpoints {
			for _, uri := range req.ProfileURIs {
				if e.TransportProfileURI == uri {
					filtered = append(filtered, e)
					break
				}
			}
		}
		endpoints = filtered
	}
	return &ua.GetEndpointsResponse{Endpoints: endpoints}
}

func (s *Server) handleFindServers(ctx *requestContext, req *ua.FindServersRequest) any {
	self := s.applicationDescription()

	// Filter by server URI when the client names any.
	if len(req.ServerURIs) > 0 {
		matched := false
		for _, uri := range req.ServerURIs {
			if strings.EqualFold(uri, self.ApplicationURI) {
				matched = true
				break
			}
		}
		if !matched {
			return &ua.FindServersResponse{}
		}
	}
	return &ua.FindServersResponse{Servers: []ua.ApplicationDescription{self}}
}
